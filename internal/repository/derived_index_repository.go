package repository

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DerivedIndexRepository is the key-value / sorted-set adapter over Redis. It
// knows nothing about which keys exist; key naming belongs to its caller.
type DerivedIndexRepository struct {
	redisClient *redis.Client
	boundedCall
}

func NewDerivedIndexRepository(redisClient *redis.Client, timeout time.Duration) *DerivedIndexRepository {
	return &DerivedIndexRepository{redisClient: redisClient, boundedCall: boundedCall{timeout: timeout}}
}

func (r *DerivedIndexRepository) HashIncrement(ctx context.Context, key, field string, delta int64) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	value, err := r.redisClient.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("HINCRBY %s %s: %w", key, field, classifyError(err))
	}
	return value, nil
}

// HashGetAll returns an empty map when the key does not exist yet.
func (r *DerivedIndexRepository) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	values, err := r.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("HGETALL %s: %w", key, classifyError(err))
	}
	return values, nil
}

func (r *DerivedIndexRepository) SortedSetIncrementScore(ctx context.Context, set, member string, delta float64) (float64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	score, err := r.redisClient.ZIncrBy(ctx, set, delta, member).Result()
	if err != nil {
		return 0, fmt.Errorf("ZINCRBY %s %s: %w", set, member, classifyError(err))
	}
	return score, nil
}

func (r *DerivedIndexRepository) SortedSetAdd(ctx context.Context, set, member string, score float64) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.redisClient.ZAdd(ctx, set, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("ZADD %s %s: %w", set, member, classifyError(err))
	}
	return nil
}

// SortedSetRangeDesc returns members from highest to lowest score, inclusive
// of both bounds. Negative bounds count from the end as in Redis.
func (r *DerivedIndexRepository) SortedSetRangeDesc(ctx context.Context, set string, start, stop int64) ([]models.ScoredMember, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	values, err := r.redisClient.ZRevRangeWithScores(ctx, set, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("ZREVRANGE %s: %w", set, classifyError(err))
	}
	return toScoredMembers(values), nil
}

// SortedSetRangeAsc returns members from lowest to highest score.
func (r *DerivedIndexRepository) SortedSetRangeAsc(ctx context.Context, set string, start, stop int64) ([]models.ScoredMember, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	values, err := r.redisClient.ZRangeWithScores(ctx, set, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("ZRANGE %s: %w", set, classifyError(err))
	}
	return toScoredMembers(values), nil
}

func (r *DerivedIndexRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("DEL %v: %w", keys, classifyError(err))
	}
	return nil
}

func toScoredMembers(values []redis.Z) []models.ScoredMember {
	members := make([]models.ScoredMember, 0, len(values))
	for _, z := range values {
		var member string
		switch m := z.Member.(type) {
		case string:
			member = m
		case []byte:
			member = string(m)
		case int64:
			member = strconv.FormatInt(m, 10)
		default:
			member = fmt.Sprint(m)
		}
		members = append(members, models.ScoredMember{Member: member, Score: z.Score})
	}
	return members
}
