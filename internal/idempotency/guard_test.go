package idempotency

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

func newGuard(t *testing.T) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, 30*time.Second, nil), mr
}

func TestGuard_InFlightThenReplay(t *testing.T) {
	g, mr := newGuard(t)
	ctx := context.Background()

	id, err := g.Begin(ctx, "req-1")
	require.NoError(t, err)
	assert.Zero(t, id)

	_, err = g.Begin(ctx, "req-1")
	assert.True(t, httperr.IsBusiness(err, CodeInFlight))
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	g.Complete(ctx, "req-1", 42)
	val, err := mr.Get(keyPrefix + "req-1")
	require.NoError(t, err)
	assert.Equal(t, "done:42", val)

	id, err = g.Begin(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestGuard_AbortAllowsRetry(t *testing.T) {
	g, mr := newGuard(t)
	ctx := context.Background()

	_, err := g.Begin(ctx, "slot:1:2025-03-10:10:00:00")
	require.NoError(t, err)
	g.Abort(ctx, "slot:1:2025-03-10:10:00:00")
	assert.False(t, mr.Exists(keyPrefix+"slot:1:2025-03-10:10:00:00"))

	_, err = g.Begin(ctx, "slot:1:2025-03-10:10:00:00")
	assert.NoError(t, err)
}

func TestGuard_MarkerExpires(t *testing.T) {
	g, mr := newGuard(t)
	ctx := context.Background()

	_, err := g.Begin(ctx, "req-2")
	require.NoError(t, err)
	mr.FastForward(31 * time.Second)

	_, err = g.Begin(ctx, "req-2")
	assert.NoError(t, err)
}

func TestGuard_RedisDownProceeds(t *testing.T) {
	g, mr := newGuard(t)
	mr.Close()

	id, err := g.Begin(context.Background(), "req-3")
	assert.NoError(t, err)
	assert.Zero(t, id)
	g.Complete(context.Background(), "req-3", 1)
	g.Abort(context.Background(), "req-3")
}

func TestGuard_NilIsNoop(t *testing.T) {
	var g *Guard
	id, err := g.Begin(context.Background(), "x")
	assert.NoError(t, err)
	assert.Zero(t, id)
	g.Complete(context.Background(), "x", 1)
	g.Abort(context.Background(), "x")
}

func TestSlotKey(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "slot:3:2025-03-10:10:00:00", SlotKey(3, day, "10:00:00"))
}
