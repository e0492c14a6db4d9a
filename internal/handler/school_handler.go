package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/service"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
	"github.com/noah-isme/sma-results-api/pkg/response"
)

type schoolService interface {
	Create(ctx context.Context, req service.CreateSchoolRequest) (*models.School, error)
	Get(ctx context.Context, id string) (*models.School, error)
	UpdateGradingSystem(ctx context.Context, id string, system models.GradingSystem) (*models.School, error)
	UpdatePolicy(ctx context.Context, id string, policy models.SchoolPolicy) (*models.School, error)
	StartAcademicYear(ctx context.Context, id string, req service.StartAcademicYearRequest) (*models.School, error)
}

// SchoolHandler exposes the caller's school configuration.
type SchoolHandler struct {
	schools schoolService
}

// NewSchoolHandler constructs a school handler.
func NewSchoolHandler(schools schoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// Create godoc
// @Summary Register a school
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body service.CreateSchoolRequest true "School payload"
// @Success 201 {object} response.Envelope
// @Router /schools [post]
func (h *SchoolHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleSuperAdmin {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only super administrators can register schools"))
		return
	}
	var req service.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	school, err := h.schools.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// Current godoc
// @Summary Current school
// @Description Returns the school with the terms of its current academic year
// @Tags Schools
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schools/current [get]
func (h *SchoolHandler) Current(c *gin.Context) {
	schoolID, _, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	school, err := h.schools.Get(c.Request.Context(), schoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// UpdateGradingSystem godoc
// @Summary Replace the grading system
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body models.GradingSystem true "Grading system"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schools/current/grading-system [put]
func (h *SchoolHandler) UpdateGradingSystem(c *gin.Context) {
	schoolID, _, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var system models.GradingSystem
	if err := c.ShouldBindJSON(&system); err != nil {
		response.Error(c, bindError(err))
		return
	}
	school, err := h.schools.UpdateGradingSystem(c.Request.Context(), schoolID, system)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// UpdatePolicy godoc
// @Summary Replace promotion and ranking overrides
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body models.SchoolPolicy true "Policy"
// @Success 200 {object} response.Envelope
// @Router /schools/current/policy [put]
func (h *SchoolHandler) UpdatePolicy(c *gin.Context) {
	schoolID, _, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var policy models.SchoolPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		response.Error(c, bindError(err))
		return
	}
	school, err := h.schools.UpdatePolicy(c.Request.Context(), schoolID, policy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// StartAcademicYear godoc
// @Summary Start a new academic year
// @Description Replaces the current academic year and its terms; earlier terms are kept inactive
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body service.StartAcademicYearRequest true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /schools/current/academic-year [post]
func (h *SchoolHandler) StartAcademicYear(c *gin.Context) {
	schoolID, _, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.StartAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	school, err := h.schools.StartAcademicYear(c.Request.Context(), schoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}
