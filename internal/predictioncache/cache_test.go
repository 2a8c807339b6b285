package predictioncache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"medadmit-workers/internal/common/logger"
	"medadmit-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testApplicant() models.ApplicantInput {
	return models.ApplicantInput{
		CumulativeGPA:    3.7,
		MCATTotal:        515,
		StateOfResidence: "CA",
	}
}

func newMiniredisCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl, "", "2024.1", logger.NewTestLogger(t)), mr
}

func TestKey_StableAndScoped(t *testing.T) {
	c := New(nil, time.Minute, "", "2024.1", nil)

	k1, err := c.Key("quick", testApplicant(), "")
	require.NoError(t, err)
	k2, err := c.Key("quick", testApplicant(), "")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "medadmit:2024.1:quick:"))

	other := testApplicant()
	other.MCATTotal = 516
	k3, _ := c.Key("quick", other, "")
	assert.NotEqual(t, k1, k3)

	k4, _ := c.Key("school", testApplicant(), "uw-medicine")
	assert.True(t, strings.HasSuffix(k4, ":uw-medicine"))

	v2 := New(nil, time.Minute, "", "2025.1", nil)
	k5, _ := v2.Key("quick", testApplicant(), "")
	assert.NotEqual(t, k1, k5)
}

func TestCache_RoundTripWithTTL(t *testing.T) {
	c, mr := newMiniredisCache(t, 10*time.Minute)
	ctx := context.Background()

	key, err := c.Key("quick", testApplicant(), "")
	require.NoError(t, err)

	var out models.QuickPredictionResult
	assert.False(t, c.Get(ctx, key, &out))

	want := models.QuickPredictionResult{Score: 50.08, Tier: "competitive", GlobalProbability: 0.64, ExpectedAcceptances: 1.84, SchoolCount: 26}
	c.Set(ctx, key, want)

	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	require.True(t, c.Get(ctx, key, &out))
	assert.Equal(t, want, out)

	mr.FastForward(11 * time.Minute)
	assert.False(t, c.Get(ctx, key, &out))
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Minute)
	require.NoError(t, mr.Set("medadmit:2024.1:quick:bad", "{not json"))

	var out models.QuickPredictionResult
	assert.False(t, c.Get(context.Background(), "medadmit:2024.1:quick:bad", &out))
}

func TestCache_RedisErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	core, logs := observer.New(zapcore.WarnLevel)
	c := New(client, 5*time.Minute, "test", "", logger.NewZapAdapter(zap.New(core)))
	ctx := context.Background()

	mock.ExpectGet("test:k").SetErr(errors.New("connection refused"))
	var out models.QuickPredictionResult
	assert.False(t, c.Get(ctx, "test:k", &out))

	mock.ExpectSet("test:k", []byte(`{"score":1,"tier":"low","globalProbability":0,"expectedAcceptances":0,"schoolCount":0}`), 5*time.Minute).
		SetErr(errors.New("connection refused"))
	c.Set(ctx, "test:k", models.QuickPredictionResult{Score: 1, Tier: "low"})

	assert.NoError(t, mock.ExpectationsWereMet())

	for _, msg := range []string{"cache read failed", "cache write failed"} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		fields := entries[0].ContextMap()
		assert.Equal(t, "CACHE_UNAVAILABLE", fields["errorCode"])
		assert.Equal(t, "connection refused", fields["details"])
		assert.Equal(t, true, fields["retryable"])
		assert.Equal(t, "prediction-cache", fields["component"])
	}
}

func TestCache_NilIsSafe(t *testing.T) {
	var c *Cache
	var out models.QuickPredictionResult

	assert.False(t, c.Get(context.Background(), "k", &out))
	c.Set(context.Background(), "k", out)

	key, err := c.Key("quick", testApplicant(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, DefaultNamespace+":quick:"))
}
