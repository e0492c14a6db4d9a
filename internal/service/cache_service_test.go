package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

type memoryCacheRepo struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
	err     error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.err != nil {
		return m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, pattern)
	delete(m.data, pattern)
	return nil
}

func TestCacheServiceHitMissAndInvalidate(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()

	var stats models.ClassStatistics
	found, err := svc.Get(ctx, "stats:school-1", &stats)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.Set(ctx, "stats:school-1", models.ClassStatistics{Count: 4}, 0))
	assert.Equal(t, 10*time.Minute, repo.ttls["stats:school-1"])

	found, err = svc.Get(ctx, "stats:school-1", &stats)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, stats.Count)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)

	require.NoError(t, svc.Invalidate(ctx, "stats:school-1"))
	assert.Equal(t, []string{"stats:school-1"}, repo.deleted)
}

func TestCacheServiceReportsBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.err = errors.New("connection refused")
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var stats models.ClassStatistics
	found, err := svc.Get(context.Background(), "k", &stats)
	assert.False(t, found)
	assert.Error(t, err)
	assert.Error(t, svc.Set(context.Background(), "k", stats, 0))
	assert.Error(t, svc.Invalidate(context.Background(), "k"))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)
	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.data)

	var nilService *CacheService
	found, err := nilService.Get(context.Background(), "k", new(int))
	assert.False(t, found)
	assert.NoError(t, err)
}
