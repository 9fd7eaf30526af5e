package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aula-admin-api/internal/service"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
	"github.com/noah-isme/aula-admin-api/pkg/response"
)

// ProvisioningHandler exposes the one-stop account creation flows.
type ProvisioningHandler struct {
	provisioning *service.ProvisioningService
	metrics      *service.MetricsService
}

// NewProvisioningHandler constructs ProvisioningHandler.
func NewProvisioningHandler(provisioning *service.ProvisioningService, metrics *service.MetricsService) *ProvisioningHandler {
	return &ProvisioningHandler{provisioning: provisioning, metrics: metrics}
}

// CreateStudents godoc
// @Summary Create students under a guardian, minting credentials
// @Tags Provisioning
// @Accept json
// @Produce json
// @Param payload body service.ProvisionStudentsRequest true "Provisioning payload"
// @Success 201 {object} response.Envelope
// @Router /provisioning/students [post]
func (h *ProvisioningHandler) CreateStudents(c *gin.Context) {
	var req service.ProvisionStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.provisioning.CreateStudents(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordProvisioned(result)
	response.Created(c, result)
}

// CreateStudentAndEnroll godoc
// @Summary Create a student and enroll it into a commission atomically
// @Tags Provisioning
// @Accept json
// @Produce json
// @Param payload body service.ProvisionAndEnrollRequest true "Provision-and-enroll payload"
// @Success 201 {object} response.Envelope
// @Router /provisioning/enroll [post]
func (h *ProvisioningHandler) CreateStudentAndEnroll(c *gin.Context) {
	var req service.ProvisionAndEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.provisioning.CreateStudentAndEnroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordProvisioned(result)
	if result.Enrollment != nil {
		h.metrics.RecordEnrollments(string(result.Enrollment.State), 1)
	}
	response.Created(c, result)
}

func (h *ProvisioningHandler) recordProvisioned(result *service.ProvisioningResult) {
	if result.GuardianCreated {
		h.metrics.RecordAccountProvisioned("guardian")
	}
	for range result.Students {
		h.metrics.RecordAccountProvisioned("student")
	}
}
