package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/service"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
	"github.com/noah-isme/sma-results-api/pkg/response"
)

type resultService interface {
	Create(ctx context.Context, schoolID, actorID string, req service.CreateResultRequest) (*models.Result, error)
	BulkCreate(ctx context.Context, schoolID, actorID string, reqs []service.CreateResultRequest) (*service.BulkCreateResult, error)
	Get(ctx context.Context, schoolID, id string) (*models.Result, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.Result, *models.Pagination, error)
	UpdateSubject(ctx context.Context, schoolID, actorID, id string, version, index int, in service.SubjectInput) (*models.Result, error)
	UpdateAttendance(ctx context.Context, schoolID, actorID, id string, version int, attendance models.Attendance) (*models.Result, error)
	UpdateBehavior(ctx context.Context, schoolID, actorID, id string, version int, behavior models.Behavior) (*models.Result, error)
	UpdateComments(ctx context.Context, schoolID, actorID, id string, version int, req service.CommentsRequest) (*models.Result, error)
	UpdateActivities(ctx context.Context, schoolID, actorID, id string, version int, activities models.Activities) (*models.Result, error)
	UpdateNextTerm(ctx context.Context, schoolID, actorID, id string, version int, next models.NextTerm) (*models.Result, error)
	Statistics(ctx context.Context, cohort models.Cohort) (*models.ClassStatistics, error)
}

// ResultHandler exposes result recording and editing endpoints.
type ResultHandler struct {
	results resultService
}

// NewResultHandler constructs a result handler.
func NewResultHandler(results resultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// Create godoc
// @Summary Record a result
// @Description Computes every derived field from the raw scores and stores the result as Draft
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.CreateResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) Create(c *gin.Context) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.results.Create(c.Request.Context(), schoolID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusCreated, result, result.Version)
}

// BulkCreate godoc
// @Summary Record results in bulk
// @Description Each item is computed and stored independently; rejected items are listed with their index
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body []service.CreateResultRequest true "Result payloads"
// @Success 200 {object} response.Envelope
// @Router /results/bulk-create [post]
func (h *ResultHandler) BulkCreate(c *gin.Context) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var reqs []service.CreateResultRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, bindError(err))
		return
	}
	out, err := h.results.BulkCreate(c.Request.Context(), schoolID, claims.UserID, reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if len(out.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, out, nil, map[string]interface{}{"created": len(out.Created), "failed": len(out.Failed)})
}

// List godoc
// @Summary List results
// @Tags Results
// @Produce json
// @Param class query string false "Class name"
// @Param academicYear query string false "Academic year"
// @Param term query string false "Term"
// @Param status query string false "Status"
// @Param studentId query string false "Student identifier"
// @Param includeArchived query bool false "Include archived results"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) List(c *gin.Context) {
	h.list(c, func(filter *models.ResultFilter) {
		filter.ClassName = c.Query("class")
		filter.StudentID = c.Query("studentId")
	})
}

// ListByStudent godoc
// @Summary List a student's results
// @Tags Results
// @Produce json
// @Param studentId path string true "Student identifier"
// @Success 200 {object} response.Envelope
// @Router /results/student/{studentId} [get]
func (h *ResultHandler) ListByStudent(c *gin.Context) {
	h.list(c, func(filter *models.ResultFilter) {
		filter.StudentID = c.Param("studentId")
	})
}

// ListByClass godoc
// @Summary List a class's results
// @Tags Results
// @Produce json
// @Param className path string true "Class name"
// @Success 200 {object} response.Envelope
// @Router /results/class/{className} [get]
func (h *ResultHandler) ListByClass(c *gin.Context) {
	h.list(c, func(filter *models.ResultFilter) {
		filter.ClassName = c.Param("className")
	})
}

func (h *ResultHandler) list(c *gin.Context, scope func(*models.ResultFilter)) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.ResultFilter{
		SchoolID:     schoolID,
		AcademicYear: c.Query("academicYear"),
		Term:         c.Query("term"),
		ExamType:     models.ExamType(c.Query("examType")),
		Status:       models.ResultStatus(c.Query("status")),
	}
	if archived, err := strconv.ParseBool(c.DefaultQuery("includeArchived", "false")); err == nil {
		filter.IncludeArchived = archived
	}
	filter.Page, filter.PageSize = pageParams(c)
	scope(&filter)
	if claims.Role.PublishedOnly() {
		filter.Status = models.ResultStatusPublished
	}

	results, pagination, err := h.results.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, pagination)
}

// Get godoc
// @Summary Get result
// @Tags Results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/{id} [get]
func (h *ResultHandler) Get(c *gin.Context) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.results.Get(c.Request.Context(), schoolID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims.Role.PublishedOnly() && result.Status != models.ResultStatusPublished {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "result not found"))
		return
	}
	response.Versioned(c, http.StatusOK, result, result.Version)
}

// Statistics godoc
// @Summary Class statistics
// @Tags Results
// @Produce json
// @Param class query string true "Class name"
// @Param academicYear query string true "Academic year"
// @Param term query string true "Term"
// @Param examType query string false "Exam type, defaults to End-of-Term"
// @Success 200 {object} response.Envelope
// @Router /results/statistics [get]
func (h *ResultHandler) Statistics(c *gin.Context) {
	schoolID, _, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	cohort := models.Cohort{
		SchoolID:     schoolID,
		ClassName:    c.Query("class"),
		AcademicYear: c.Query("academicYear"),
		Term:         c.Query("term"),
		ExamType:     models.ExamType(c.DefaultQuery("examType", string(models.ExamTypeEndOfTerm))),
	}
	if cohort.ClassName == "" || cohort.AcademicYear == "" || cohort.Term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class, academicYear and term are required"))
		return
	}
	stats, err := h.results.Statistics(c.Request.Context(), cohort)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// UpdateSubject godoc
// @Summary Edit one subject line
// @Description Recomputes the result; positions are cleared until the class is ranked again
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param index path int true "Subject index"
// @Param If-Match header string true "Result version"
// @Param payload body service.SubjectInput true "Subject inputs"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /results/{id}/subjects/{index} [put]
func (h *ResultHandler) UpdateSubject(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subject index must be a number"))
		return
	}
	var in service.SubjectInput
	h.edit(c, &in, func(ctx context.Context, schoolID, actorID, id string, version int) (*models.Result, error) {
		return h.results.UpdateSubject(ctx, schoolID, actorID, id, version, index, in)
	})
}

// UpdateAttendance godoc
// @Summary Edit attendance
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param If-Match header string true "Result version"
// @Param payload body models.Attendance true "Attendance"
// @Success 200 {object} response.Envelope
// @Router /results/{id}/attendance [put]
func (h *ResultHandler) UpdateAttendance(c *gin.Context) {
	var in models.Attendance
	h.edit(c, &in, func(ctx context.Context, schoolID, actorID, id string, version int) (*models.Result, error) {
		return h.results.UpdateAttendance(ctx, schoolID, actorID, id, version, in)
	})
}

// UpdateBehavior godoc
// @Summary Edit behaviour ratings
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param If-Match header string true "Result version"
// @Param payload body models.Behavior true "Behaviour ratings"
// @Success 200 {object} response.Envelope
// @Router /results/{id}/behavior [put]
func (h *ResultHandler) UpdateBehavior(c *gin.Context) {
	var in models.Behavior
	h.edit(c, &in, func(ctx context.Context, schoolID, actorID, id string, version int) (*models.Result, error) {
		return h.results.UpdateBehavior(ctx, schoolID, actorID, id, version, in)
	})
}

// UpdateComments godoc
// @Summary Edit teacher and principal remarks
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param If-Match header string true "Result version"
// @Param payload body service.CommentsRequest true "Remarks"
// @Success 200 {object} response.Envelope
// @Router /results/{id}/comments [put]
func (h *ResultHandler) UpdateComments(c *gin.Context) {
	var in service.CommentsRequest
	h.edit(c, &in, func(ctx context.Context, schoolID, actorID, id string, version int) (*models.Result, error) {
		return h.results.UpdateComments(ctx, schoolID, actorID, id, version, in)
	})
}

// UpdateActivities godoc
// @Summary Replace extracurricular activities
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param If-Match header string true "Result version"
// @Param payload body []models.Activity true "Activities"
// @Success 200 {object} response.Envelope
// @Router /results/{id}/activities [put]
func (h *ResultHandler) UpdateActivities(c *gin.Context) {
	var in models.Activities
	h.edit(c, &in, func(ctx context.Context, schoolID, actorID, id string, version int) (*models.Result, error) {
		return h.results.UpdateActivities(ctx, schoolID, actorID, id, version, in)
	})
}

// UpdateNextTerm godoc
// @Summary Edit next term information
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param If-Match header string true "Result version"
// @Param payload body models.NextTerm true "Next term"
// @Success 200 {object} response.Envelope
// @Router /results/{id}/next-term [put]
func (h *ResultHandler) UpdateNextTerm(c *gin.Context) {
	var in models.NextTerm
	h.edit(c, &in, func(ctx context.Context, schoolID, actorID, id string, version int) (*models.Result, error) {
		return h.results.UpdateNextTerm(ctx, schoolID, actorID, id, version, in)
	})
}

type editFunc func(ctx context.Context, schoolID, actorID, id string, version int) (*models.Result, error)

func (h *ResultHandler) edit(c *gin.Context, payload interface{}, apply editFunc) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	version, err := expectedVersion(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := c.ShouldBindJSON(payload); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := apply(c.Request.Context(), schoolID, claims.UserID, c.Param("id"), version)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, result, result.Version)
}
