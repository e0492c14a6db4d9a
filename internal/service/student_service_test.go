package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func studentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		FirstName:     " Ada ",
		LastName:      "Okafor",
		Gender:        "Female",
		DateOfBirth:   time.Date(2013, 4, 2, 0, 0, 0, 0, time.UTC),
		CurrentClass:  "JSS1A",
		GuardianEmail: "parent@mail.test",
	}
}

func newStudentFixture(store *fakeStudentStore, seq *fakeSequence) *StudentService {
	svc := NewStudentService(store, seq, "STU", NewMetricsService(), nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestStudentServiceCreateAllocatesIdentifier(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentFixture(store, &fakeSequence{next: 41})

	student, err := svc.Create(context.Background(), "school-1", "admin-1", studentRequest())
	require.NoError(t, err)
	assert.Equal(t, "STU250042", student.StudentID)
	assert.Equal(t, "Ada", student.FirstName)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, 2025, student.AdmissionDate.Year())
	assert.Equal(t, "admin-1", student.CreatedBy)

	second, err := svc.Create(context.Background(), "school-1", "admin-1", studentRequest())
	require.NoError(t, err)
	assert.Equal(t, "STU250043", second.StudentID)
}

func TestStudentServiceCreateSkipsTakenIdentifiers(t *testing.T) {
	store := newFakeStudentStore()
	store.taken["STU250001"] = true
	store.taken["STU250002"] = true
	svc := newStudentFixture(store, &fakeSequence{})

	student, err := svc.Create(context.Background(), "school-1", "admin-1", studentRequest())
	require.NoError(t, err)
	assert.Equal(t, "STU250003", student.StudentID)
}

func TestStudentServiceCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newFakeStudentStore()
	for i := 1; i <= maxAllocationAttempts; i++ {
		store.taken[fmt.Sprintf("STU25%04d", i)] = true
	}
	svc := newStudentFixture(store, &fakeSequence{})

	_, err := svc.Create(context.Background(), "school-1", "admin-1", studentRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, store.created)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := newStudentFixture(newFakeStudentStore(), &fakeSequence{})
	req := studentRequest()
	req.Gender = "X"
	_, err := svc.Create(context.Background(), "school-1", "admin-1", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceCreateSequenceFailure(t *testing.T) {
	svc := newStudentFixture(newFakeStudentStore(), &fakeSequence{err: errors.New("redis down")})
	_, err := svc.Create(context.Background(), "school-1", "admin-1", studentRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestStudentServiceGetAndList(t *testing.T) {
	store := newFakeStudentStore(testStudent("STU250001", "Ada"))
	svc := newStudentFixture(store, &fakeSequence{})

	student, err := svc.Get(context.Background(), "school-1", "STU250001")
	require.NoError(t, err)
	assert.Equal(t, "Ada Okafor", student.FullName())

	_, err = svc.Get(context.Background(), "school-1", "STU259999")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{SchoolID: "school-1"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
}
