package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aula-admin-api/internal/service"
	"github.com/noah-isme/aula-admin-api/pkg/response"
)

// CredentialsHandler exposes the pending-credentials desk.
type CredentialsHandler struct {
	credentials *service.CredentialsService
}

// NewCredentialsHandler constructs CredentialsHandler.
func NewCredentialsHandler(credentials *service.CredentialsService) *CredentialsHandler {
	return &CredentialsHandler{credentials: credentials}
}

// List godoc
// @Summary List accounts still holding a temporary password
// @Tags Credentials
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /credentials/pending [get]
func (h *CredentialsHandler) List(c *gin.Context) {
	pending, err := h.credentials.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil)
}

// ExportPDF godoc
// @Summary Export pending credentials as a printable PDF sheet
// @Tags Credentials
// @Produce application/pdf
// @Success 200 {string} string "PDF payload"
// @Router /credentials/pending/export [get]
func (h *CredentialsHandler) ExportPDF(c *gin.Context) {
	raw, err := h.credentials.ExportPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="credentials.pdf"`)
	c.Data(http.StatusOK, "application/pdf", raw)
}
