package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/internal/service"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
	"github.com/noah-isme/aula-admin-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	metrics     *service.MetricsService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, metrics: metrics}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param commissionId query string false "Filter by commission"
// @Param studentId query string false "Filter by student"
// @Param state query string false "Filter by state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var filter models.EnrollmentFilter
	filter.CommissionID = c.Query("commissionId")
	filter.StudentID = c.Query("studentId")
	filter.State = models.EnrollmentState(strings.ToUpper(c.Query("state")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Create godoc
// @Summary Enroll one or more students into a commission
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		h.recordRejection(err)
		response.Error(c, err)
		return
	}
	if len(created) > 0 {
		h.metrics.RecordEnrollments(string(created[0].State), len(created))
	}
	response.Created(c, created)
}

// UpdateState godoc
// @Summary Transition an enrollment state
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateEnrollmentStateRequest true "State payload"
// @Success 204
// @Router /enrollments/{id}/state [put]
func (h *EnrollmentHandler) UpdateState(c *gin.Context) {
	var req service.UpdateEnrollmentStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.UpdateState(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Remove godoc
// @Summary Remove an enrollment row
// @Tags Enrollments
// @Param id path string true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	if err := h.enrollments.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *EnrollmentHandler) recordRejection(err error) {
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrInsufficientCapacity.Code:
		h.metrics.RecordEnrollmentRejection("capacity")
	case appErrors.ErrDuplicateEnrollment.Code:
		h.metrics.RecordEnrollmentRejection("duplicate")
	case appErrors.ErrCommissionInactive.Code:
		h.metrics.RecordEnrollmentRejection("inactive")
	}
}
