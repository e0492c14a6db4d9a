package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

func TestSequenceRepositoryNextSeedsFromExistingStudents(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	seeded := 0
	repo := NewSequenceRepository(db, func(ctx context.Context, schoolID string) (int64, error) {
		seeded++
		return 7, nil
	})

	mock.ExpectQuery("INSERT INTO id_counters").
		WithArgs("school-1", "student", int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(8))

	value, err := repo.Next(context.Background(), "school-1", "student")
	require.NoError(t, err)
	assert.Equal(t, int64(8), value)
	assert.Equal(t, 1, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepositoryNextPropagatesSeedError(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()
	boom := errors.New("count failed")
	repo := NewSequenceRepository(db, func(ctx context.Context, schoolID string) (int64, error) { return 0, boom })

	_, err := repo.Next(context.Background(), "school-1", "student")
	assert.ErrorIs(t, err, boom)
}

func TestRedisBackedStoresWithoutClient(t *testing.T) {
	_, err := NewRedisSequence(nil, nil).Next(context.Background(), "school-1", "student")
	assert.Error(t, err)

	cache := NewCacheRepository(nil, zap.NewNop())
	var dest map[string]int
	assert.ErrorIs(t, cache.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, cache.DeleteByPattern(context.Background(), "stats:*"))
	assert.NoError(t, cache.Ping(context.Background()))
}
