package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// CredentialEntry is one printable login hand-out row. The temporary
// password appears here and nowhere else outside the database column
// reserved for one-time disclosure.
type CredentialEntry struct {
	FullName          string
	Kind              string
	Username          string
	TemporaryPassword string
}

// CredentialsPDF renders credential hand-out sheets for admins to
// distribute on paper.
type CredentialsPDF struct{}

// NewCredentialsPDF constructs the exporter.
func NewCredentialsPDF() *CredentialsPDF {
	return &CredentialsPDF{}
}

// Render produces one table of pending credentials with a short notice
// that passwords must be changed on first login.
func (e *CredentialsPDF) Render(title string, entries []CredentialEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no credentials to export")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "Temporary passwords: users must change them on first login.", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{60, 25, 55, 50}
	headers := []string{"Name", "Role", "Username", "Temporary password"}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, entry := range entries {
		pdf.CellFormat(widths[0], 7, entry.FullName, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, entry.Kind, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, entry.Username, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[3], 7, entry.TemporaryPassword, "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render credentials pdf: %w", err)
	}
	return buf.Bytes(), nil
}
