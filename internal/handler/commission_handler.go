package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/internal/service"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
	"github.com/noah-isme/aula-admin-api/pkg/response"
)

// commissionUpdatePayload is the wire shape for partial updates; the
// pointer-vs-null distinction maps onto the three-state refs.
type commissionUpdatePayload struct {
	Name      *string            `json:"name"`
	MaxSeats  *int               `json:"max_seats"`
	Unlimited bool               `json:"unlimited"`
	Schedule  *string            `json:"schedule"`
	StartsOn  *time.Time         `json:"starts_on"`
	EndsOn    *time.Time         `json:"ends_on"`
	Active    *bool              `json:"active"`
	HouseID   optionalRefPayload `json:"house_id"`
	TeacherID optionalRefPayload `json:"teacher_id"`
}

// CommissionHandler exposes commission endpoints.
type CommissionHandler struct {
	commissions *service.CommissionService
	enrollments *service.EnrollmentService
}

// NewCommissionHandler constructs CommissionHandler.
func NewCommissionHandler(commissions *service.CommissionService, enrollments *service.EnrollmentService) *CommissionHandler {
	return &CommissionHandler{commissions: commissions, enrollments: enrollments}
}

// List godoc
// @Summary List commissions
// @Tags Commissions
// @Produce json
// @Param productId query string false "Filter by product"
// @Param houseId query string false "Filter by house"
// @Param teacherId query string false "Filter by teacher"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /commissions [get]
func (h *CommissionHandler) List(c *gin.Context) {
	var filter models.CommissionFilter
	filter.ProductID = c.Query("productId")
	filter.HouseID = c.Query("houseId")
	filter.TeacherID = c.Query("teacherId")
	filter.Search = c.Query("search")
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	commissions, pagination, err := h.commissions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, commissions, pagination)
}

// Get godoc
// @Summary Get commission detail with seat availability
// @Tags Commissions
// @Produce json
// @Param id path string true "Commission ID"
// @Success 200 {object} response.Envelope
// @Router /commissions/{id} [get]
func (h *CommissionHandler) Get(c *gin.Context) {
	detail, err := h.commissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create commission
// @Tags Commissions
// @Accept json
// @Produce json
// @Param payload body service.CreateCommissionRequest true "Commission payload"
// @Success 201 {object} response.Envelope
// @Router /commissions [post]
func (h *CommissionHandler) Create(c *gin.Context) {
	var req service.CreateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	commission, err := h.commissions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, commission)
}

// Update godoc
// @Summary Update commission
// @Tags Commissions
// @Accept json
// @Produce json
// @Param id path string true "Commission ID"
// @Param payload body commissionUpdatePayload true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /commissions/{id} [patch]
func (h *CommissionHandler) Update(c *gin.Context) {
	var payload commissionUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req := service.UpdateCommissionRequest{
		Name:      payload.Name,
		MaxSeats:  payload.MaxSeats,
		Unlimited: payload.Unlimited,
		Schedule:  payload.Schedule,
		StartsOn:  payload.StartsOn,
		EndsOn:    payload.EndsOn,
		Active:    payload.Active,
		House:     payload.HouseID.ref(),
		Teacher:   payload.TeacherID.ref(),
	}
	commission, err := h.commissions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, commission, nil)
}

// Deactivate godoc
// @Summary Deactivate commission
// @Tags Commissions
// @Produce json
// @Param id path string true "Commission ID"
// @Success 200 {object} response.Envelope
// @Router /commissions/{id} [delete]
func (h *CommissionHandler) Deactivate(c *gin.Context) {
	affected, err := h.commissions.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deactivated": true, "active_enrollments": affected}, nil)
}

// Roster godoc
// @Summary Export commission roster as CSV
// @Tags Commissions
// @Produce text/csv
// @Param id path string true "Commission ID"
// @Success 200 {string} string "CSV payload"
// @Router /commissions/{id}/roster [get]
func (h *CommissionHandler) Roster(c *gin.Context) {
	csv, err := h.enrollments.ExportRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="roster.csv"`)
	c.Data(http.StatusOK, "text/csv", csv)
}
