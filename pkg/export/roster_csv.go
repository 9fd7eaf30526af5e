package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// RosterRow is one enrollment line in a commission roster export.
type RosterRow struct {
	StudentName string
	Username    string
	State       string
	EnrolledAt  string
	Notes       string
}

// RosterCSV renders commission rosters for spreadsheet use.
type RosterCSV struct{}

// NewRosterCSV builds a roster exporter.
func NewRosterCSV() *RosterCSV {
	return &RosterCSV{}
}

// Render produces CSV bytes with a fixed header row.
func (e *RosterCSV) Render(rows []RosterRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"student", "username", "state", "enrolled_at", "notes"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.StudentName, row.Username, row.State, row.EnrolledAt, row.Notes}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
