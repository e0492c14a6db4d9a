package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func schoolTerms() []models.Term {
	return []models.Term{
		{ID: "t1", SchoolID: "school-1", AcademicYear: "2025/2026", Name: "First Term", IsActive: true},
		{ID: "t2", SchoolID: "school-1", AcademicYear: "2025/2026", Name: "Second Term"},
		{ID: "t3", SchoolID: "school-1", AcademicYear: "2025/2026", Name: "Third Term"},
		{ID: "x1", SchoolID: "school-2", AcademicYear: "2025/2026", Name: "First Term", IsActive: true},
	}
}

func TestTermServiceActivateKeepsSingleActiveTerm(t *testing.T) {
	store := &fakeTermStore{terms: schoolTerms()}
	svc := NewTermService(store, NewMetricsService(), nil, zap.NewNop())

	term, err := svc.Activate(context.Background(), "school-1", "t2")
	require.NoError(t, err)
	assert.Equal(t, "t2", term.ID)
	assert.True(t, term.IsActive)

	active, err := svc.GetActive(context.Background(), "school-1")
	require.NoError(t, err)
	assert.Equal(t, "t2", active.ID)

	other, err := svc.GetActive(context.Background(), "school-2")
	require.NoError(t, err)
	assert.Equal(t, "x1", other.ID, "other schools are untouched")

	_, err = svc.Activate(context.Background(), "school-1", "x1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Activate(context.Background(), "school-1", "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTermServiceActivateConcurrentActivationConflicts(t *testing.T) {
	store := &fakeTermStore{terms: schoolTerms(), activeErr: repository.ErrDuplicate}
	svc := NewTermService(store, NewMetricsService(), nil, zap.NewNop())

	_, err := svc.Activate(context.Background(), "school-1", "t2")
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestTermServiceListNormalizesMultipleActive(t *testing.T) {
	terms := schoolTerms()
	terms[2].IsActive = true
	store := &fakeTermStore{terms: terms}
	core, logs := observer.New(zapcore.WarnLevel)
	metrics := NewMetricsService()
	svc := NewTermService(store, metrics, nil, zap.New(core))

	listed, err := svc.List(context.Background(), models.TermFilter{SchoolID: "school-1"})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.True(t, listed[0].IsActive)
	assert.False(t, listed[2].IsActive)

	require.Equal(t, 1, logs.FilterMessage("multiple active terms corrected").Len())
	assert.Equal(t, uint64(1), metrics.Snapshot().TermCorrections)
}

func TestTermServiceCreate(t *testing.T) {
	store := &fakeTermStore{terms: schoolTerms()}
	svc := NewTermService(store, nil, nil, zap.NewNop())
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	term, err := svc.Create(context.Background(), "school-1", CreateTermRequest{
		Name: "Summer Term", AcademicYear: "2025/2026", StartDate: start, EndDate: start.AddDate(0, 2, 0), Activate: true,
	})
	require.NoError(t, err)
	assert.True(t, term.IsActive)
	active, err := svc.GetActive(context.Background(), "school-1")
	require.NoError(t, err)
	assert.Equal(t, term.ID, active.ID)

	_, err = svc.Create(context.Background(), "school-1", CreateTermRequest{
		Name: "Backwards", AcademicYear: "2025/2026", StartDate: start, EndDate: start.AddDate(0, -1, 0),
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTermServiceGetActiveMissing(t *testing.T) {
	svc := NewTermService(&fakeTermStore{}, nil, nil, nil)
	_, err := svc.GetActive(context.Background(), "school-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
