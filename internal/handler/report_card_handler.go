package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/service"
	"github.com/noah-isme/sma-results-api/pkg/response"
)

type reportCardService interface {
	Generate(ctx context.Context, schoolID, actorID, id string) (*models.Result, error)
	Publish(ctx context.Context, schoolID, actorID, id string) (*models.Result, error)
	Unpublish(ctx context.Context, schoolID, actorID, id string) (*models.Result, error)
	Archive(ctx context.Context, schoolID, actorID, id string) (*models.Result, error)
	DownloadLink(ctx context.Context, schoolID, id string, role models.UserRole) (*service.DownloadLink, error)
	ResolveDownload(ctx context.Context, token string) (*service.FileDownload, error)
}

// ReportCardHandler drives the report card lifecycle of a result.
type ReportCardHandler struct {
	cards reportCardService
}

// NewReportCardHandler constructs a report card handler.
func NewReportCardHandler(cards reportCardService) *ReportCardHandler {
	return &ReportCardHandler{cards: cards}
}

// Generate godoc
// @Summary Render the report card
// @Description Requires a ranked result with at least one subject; the result becomes Completed
// @Tags Report Cards
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results/{id}/generate-report [post]
func (h *ReportCardHandler) Generate(c *gin.Context) {
	h.transition(c, h.cards.Generate)
}

// Publish godoc
// @Summary Publish the report card
// @Tags Report Cards
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results/{id}/publish-report [put]
func (h *ReportCardHandler) Publish(c *gin.Context) {
	h.transition(c, h.cards.Publish)
}

// Unpublish godoc
// @Summary Withdraw a published report card
// @Tags Report Cards
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /results/{id}/unpublish-report [put]
func (h *ReportCardHandler) Unpublish(c *gin.Context) {
	h.transition(c, h.cards.Unpublish)
}

// Archive godoc
// @Summary Archive a result
// @Tags Report Cards
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /results/{id}/archive [put]
func (h *ReportCardHandler) Archive(c *gin.Context) {
	h.transition(c, h.cards.Archive)
}

type transitionFunc func(ctx context.Context, schoolID, actorID, id string) (*models.Result, error)

func (h *ReportCardHandler) transition(c *gin.Context, apply transitionFunc) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := apply(c.Request.Context(), schoolID, claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Versioned(c, http.StatusOK, result, result.Version)
}

// Link godoc
// @Summary Signed report card link
// @Description Parents and students only receive links to published report cards
// @Tags Report Cards
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/{id}/report-card [get]
func (h *ReportCardHandler) Link(c *gin.Context) {
	schoolID, claims, err := scopeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.cards.DownloadLink(c.Request.Context(), schoolID, c.Param("id"), claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download a stored report card or class export
// @Tags Report Cards
// @Produce application/pdf
// @Produce text/csv
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /report-cards/download/{token} [get]
func (h *ReportCardHandler) Download(c *gin.Context) {
	file, err := h.cards.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Body.Close()
	response.Stream(c, file.Filename, file.ContentType, -1, file.Body)
}
