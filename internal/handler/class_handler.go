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

type rankingService interface {
	CalculatePositions(ctx context.Context, schoolID string, req service.CalculatePositionsRequest) (*service.RankingSummary, error)
}

type classExporter interface {
	ExportClass(ctx context.Context, cohort models.Cohort, format service.ExportFormat) (*service.ExportResult, error)
}

type classGenerator interface {
	GenerateClass(ctx context.Context, schoolID, actorID string, cohort models.Cohort) (*service.BatchGeneration, error)
}

// ClassHandler exposes operations over a whole class cohort: ranking, exports and batch
// report card generation.
type ClassHandler struct {
	ranking   rankingService
	exports   classExporter
	generator classGenerator
}

// NewClassHandler constructs a class handler.
func NewClassHandler(ranking rankingService, exports classExporter, generator classGenerator) *ClassHandler {
	return &ClassHandler{ranking: ranking, exports: exports, generator: generator}
}

// CalculatePositions godoc
// @Summary Rank a class
// @Description Assigns overall and per-subject positions; completed results whose placement changed are reopened
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CalculatePositionsRequest true "Cohort"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results/calculate-positions [post]
func (h *ClassHandler) CalculatePositions(c *gin.Context) {
	schoolID, _, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CalculatePositionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	summary, err := h.ranking.CalculatePositions(c.Request.Context(), schoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Export class results
// @Description Stores a CSV or PDF export and returns a signed download link
// @Tags Classes
// @Produce json
// @Param className path string true "Class name"
// @Param academicYear query string true "Academic year"
// @Param term query string true "Term"
// @Param examType query string false "Exam type, defaults to End-of-Term"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {object} response.Envelope
// @Router /results/class/{className}/export [get]
func (h *ClassHandler) Export(c *gin.Context) {
	schoolID, _, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.exports.ExportClass(c.Request.Context(), cohortFromRequest(c, schoolID), service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// GenerateReports godoc
// @Summary Render report cards for a class
// @Description Queues every ranked result of the class for rendering
// @Tags Classes
// @Produce json
// @Param className path string true "Class name"
// @Param academicYear query string true "Academic year"
// @Param term query string true "Term"
// @Param examType query string false "Exam type, defaults to End-of-Term"
// @Success 202 {object} response.Envelope
// @Router /results/class/{className}/generate-reports [post]
func (h *ClassHandler) GenerateReports(c *gin.Context) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	cohort := cohortFromRequest(c, schoolID)
	if cohort.AcademicYear == "" || cohort.Term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear and term are required"))
		return
	}
	batch, err := h.generator.GenerateClass(c.Request.Context(), schoolID, claims.UserID, cohort)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, batch, nil)
}

func cohortFromRequest(c *gin.Context, schoolID string) models.Cohort {
	return models.Cohort{
		SchoolID:     schoolID,
		ClassName:    c.Param("className"),
		AcademicYear: c.Query("academicYear"),
		Term:         c.Query("term"),
		ExamType:     models.ExamType(c.DefaultQuery("examType", string(models.ExamTypeEndOfTerm))),
	}
}
