package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-results-api/pkg/cache"
)

// SeedFunc returns the value a fresh counter should start from, e.g. the number of students
// already registered before counters existed.
type SeedFunc func(ctx context.Context, schoolID string) (int64, error)

// SequenceRepository hands out per-school sequence numbers from a Postgres counter row. The
// upsert is a single atomic statement, so concurrent callers never receive the same value.
type SequenceRepository struct {
	db   *sqlx.DB
	seed SeedFunc
}

// NewSequenceRepository constructs a Postgres backed counter.
func NewSequenceRepository(db *sqlx.DB, seed SeedFunc) *SequenceRepository {
	return &SequenceRepository{db: db, seed: seed}
}

// Next increments and returns the counter for (schoolID, scope).
func (r *SequenceRepository) Next(ctx context.Context, schoolID, scope string) (int64, error) {
	var start int64
	if r.seed != nil {
		seeded, err := r.seed(ctx, schoolID)
		if err != nil {
			return 0, err
		}
		start = seeded
	}

	const query = `INSERT INTO id_counters (school_id, scope, value, updated_at) VALUES ($1, $2, $3 + 1, $4)
        ON CONFLICT (school_id, scope) DO UPDATE SET value = id_counters.value + 1, updated_at = EXCLUDED.updated_at
        RETURNING value`
	var value int64
	if err := r.db.GetContext(ctx, &value, query, schoolID, scope, start, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", scope, err)
	}
	return value, nil
}

// RedisSequence hands out per-school sequence numbers with INCR.
type RedisSequence struct {
	client *redis.Client
	seed   SeedFunc
}

// NewRedisSequence constructs a Redis backed counter.
func NewRedisSequence(client *redis.Client, seed SeedFunc) *RedisSequence {
	return &RedisSequence{client: client, seed: seed}
}

// Next increments and returns the counter for (schoolID, scope). An absent key is first
// seeded with SETNX so a lost Redis keyspace does not reissue identifiers.
func (r *RedisSequence) Next(ctx context.Context, schoolID, scope string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis sequence: client not configured")
	}
	key := cache.Key("seq", scope, schoolID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis exists %s: %w", key, err)
	}
	if exists == 0 && r.seed != nil {
		start, err := r.seed(ctx, schoolID)
		if err != nil {
			return 0, err
		}
		if err := r.client.SetNX(ctx, key, start, 0).Err(); err != nil {
			return 0, fmt.Errorf("redis seed %s: %w", key, err)
		}
	}

	value, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return value, nil
}
