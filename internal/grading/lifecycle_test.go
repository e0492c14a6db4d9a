package grading

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func rankedResult(t *testing.T) models.Result {
	t.Helper()
	computed, err := ComputeDerivedFields(rawResult(), defaultConfig())
	require.NoError(t, err)
	return RankCohort([]models.Result{computed}, models.TieBreakCompetition)[0]
}

func TestPublishRequiresGeneratedReport(t *testing.T) {
	_, err := Publish(rankedResult(t), "admin-1", time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrState))
}

func TestGenerateThenPublish(t *testing.T) {
	now := time.Date(2025, time.December, 12, 9, 0, 0, 0, time.UTC)
	generated, err := Generate(rankedResult(t), "teacher-1", "/reports/res-1.pdf", now)
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusCompleted, generated.Status)
	assert.True(t, generated.ReportCard.IsGenerated)
	assert.Equal(t, "teacher-1", generated.ReportCard.GeneratedBy)
	assert.Equal(t, now, *generated.ReportCard.GeneratedAt)

	regenerated, err := Generate(generated, "teacher-2", "/reports/res-1-v2.pdf", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "/reports/res-1-v2.pdf", regenerated.ReportCard.PDFURL)

	published, err := Publish(regenerated, "admin-1", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusPublished, published.Status)
	assert.True(t, published.ReportCard.IsPublished)
	assert.Equal(t, "admin-1", published.ReportCard.PublishedBy)
}

func TestGenerateRequiresRanking(t *testing.T) {
	computed, err := ComputeDerivedFields(rawResult(), defaultConfig())
	require.NoError(t, err)
	_, err = Generate(computed, "teacher-1", "/reports/x.pdf", time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrState))
}

func TestGenerateOncePublishedRequiresUnpublish(t *testing.T) {
	now := time.Now()
	generated, err := Generate(rankedResult(t), "teacher-1", "/reports/a.pdf", now)
	require.NoError(t, err)
	published, err := Publish(generated, "admin-1", now)
	require.NoError(t, err)

	_, err = Generate(published, "teacher-1", "/reports/b.pdf", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrState))
	assert.Contains(t, err.Error(), "unpublish")

	withdrawn, err := Unpublish(published)
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusCompleted, withdrawn.Status)
	assert.False(t, withdrawn.ReportCard.IsPublished)
	assert.Nil(t, withdrawn.ReportCard.PublishedAt)

	_, err = Generate(withdrawn, "teacher-1", "/reports/b.pdf", now)
	require.NoError(t, err)

	_, err = Unpublish(withdrawn)
	assert.True(t, errors.Is(err, appErrors.ErrState))
}

func TestArchiveFromAnyState(t *testing.T) {
	now := time.Now()
	draft := rankedResult(t)
	generated, err := Generate(draft, "teacher-1", "/reports/a.pdf", now)
	require.NoError(t, err)
	published, err := Publish(generated, "admin-1", now)
	require.NoError(t, err)

	for _, r := range []models.Result{draft, generated, published} {
		archived := Archive(r)
		assert.Equal(t, models.ResultStatusArchived, archived.Status)
		assert.False(t, archived.IsActive)
		assert.Equal(t, r.Subjects, archived.Subjects)
	}

	archived := Archive(published)
	_, err = Generate(archived, "teacher-1", "/reports/a.pdf", now)
	assert.True(t, errors.Is(err, appErrors.ErrState))
	_, err = Publish(archived, "admin-1", now)
	assert.True(t, errors.Is(err, appErrors.ErrState))
}

func TestPrepareEdit(t *testing.T) {
	generated, err := Generate(rankedResult(t), "teacher-1", "/reports/a.pdf", time.Now())
	require.NoError(t, err)

	editable, err := PrepareEdit(generated)
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusDraft, editable.Status)
	assert.False(t, editable.ReportCard.IsGenerated)
	assert.Zero(t, editable.OverallPerformance.Position)
	assert.Zero(t, editable.Subjects[0].Position)
	assert.Equal(t, 1, generated.Subjects[0].Position, "input must not be modified")

	published, err := Publish(generated, "admin-1", time.Now())
	require.NoError(t, err)
	_, err = PrepareEdit(published)
	assert.True(t, errors.Is(err, appErrors.ErrState))
}
