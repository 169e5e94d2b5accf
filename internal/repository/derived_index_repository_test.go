package repository

import (
	"context"
	"insurance-service/internal/models"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToScoredMembers(t *testing.T) {
	members := toScoredMembers([]redis.Z{
		{Member: "POL1", Score: 10},
		{Member: []byte("POL2"), Score: 20},
		{Member: int64(3), Score: 30},
	})

	assert.Equal(t, []models.ScoredMember{
		{Member: "POL1", Score: 10},
		{Member: "POL2", Score: 20},
		{Member: "3", Score: 30},
	}, members)
}

func newTestDerivedIndex(t *testing.T) *DerivedIndexRepository {
	t.Helper()
	addr := os.Getenv("INSURANCE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INSURANCE_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	require.NoError(t, client.FlushDB(context.Background()).Err())
	return NewDerivedIndexRepository(client, 2*time.Second)
}

func TestDerivedIndexRepository_Integration(t *testing.T) {
	repo := newTestDerivedIndex(t)
	ctx := context.Background()

	t.Run("hash counters start from zero", func(t *testing.T) {
		values, err := repo.HashGetAll(ctx, "test:stats")
		require.NoError(t, err)
		assert.Empty(t, values)

		count, err := repo.HashIncrement(ctx, "test:stats", "1", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = repo.HashIncrement(ctx, "test:stats", "1", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		values, err = repo.HashGetAll(ctx, "test:stats")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"1": "2"}, values)
	})

	t.Run("scores accumulate and rank descending", func(t *testing.T) {
		_, err := repo.SortedSetIncrementScore(ctx, "test:rank", "1", 1000)
		require.NoError(t, err)
		_, err = repo.SortedSetIncrementScore(ctx, "test:rank", "2", 5000)
		require.NoError(t, err)
		score, err := repo.SortedSetIncrementScore(ctx, "test:rank", "1", 500.5)
		require.NoError(t, err)
		assert.Equal(t, 1500.5, score)

		top, err := repo.SortedSetRangeDesc(ctx, "test:rank", 0, 9)
		require.NoError(t, err)
		assert.Equal(t, []models.ScoredMember{{Member: "2", Score: 5000}, {Member: "1", Score: 1500.5}}, top)
	})

	t.Run("time index orders ascending", func(t *testing.T) {
		require.NoError(t, repo.SortedSetAdd(ctx, "test:idx", "POL3", 300))
		require.NoError(t, repo.SortedSetAdd(ctx, "test:idx", "POL1", 100))
		require.NoError(t, repo.SortedSetAdd(ctx, "test:idx", "POL2", 200))

		ordered, err := repo.SortedSetRangeAsc(ctx, "test:idx", 0, -1)
		require.NoError(t, err)
		require.Len(t, ordered, 3)
		assert.Equal(t, "POL1", ordered[0].Member)
		assert.Equal(t, "POL2", ordered[1].Member)
		assert.Equal(t, "POL3", ordered[2].Member)
	})

	t.Run("missing sorted set reads as empty", func(t *testing.T) {
		members, err := repo.SortedSetRangeDesc(ctx, "test:none", 0, 9)
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("delete removes keys", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "test:stats", "test:rank", "test:idx"))
		values, err := repo.HashGetAll(ctx, "test:stats")
		require.NoError(t, err)
		assert.Empty(t, values)
	})
}

func TestDerivedIndexRepository_UnreachableStoreIsUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	repo := NewDerivedIndexRepository(client, 500*time.Millisecond)

	_, err := repo.HashIncrement(context.Background(), "agente:stats", "1", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
