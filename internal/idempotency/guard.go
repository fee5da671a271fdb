package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const (
	keyPrefix    = "clinic:idem:"
	pending      = "pending"
	donePrefix   = "done:"
	DefaultTTL   = 30 * time.Second
	CodeInFlight = "request_in_flight"
)

// Guard marks a create request as in flight in redis so a double submit is
// rejected or replayed. The database stays authoritative: when redis is
// unreachable the guard logs and lets the request through.
// A nil *Guard is a no-op.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func New(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{rdb: rdb, ttl: ttl, log: log.Named("idempotency")}
}

// SlotKey is used when the caller supplied no key of its own.
func SlotKey(practitionerID uint, date time.Time, hms string) string {
	return fmt.Sprintf("slot:%d:%s:%s", practitionerID, date.Format(timezone.DateLayout), hms)
}

// Begin sets the pending marker. If key already completed, the booking id
// created under it is returned and the caller should replay it.
func (g *Guard) Begin(ctx context.Context, key string) (uint, error) {
	if g == nil || key == "" {
		return 0, nil
	}

	ok, err := g.rdb.SetNX(ctx, keyPrefix+key, pending, g.ttl).Result()
	if err != nil {
		g.log.Warn("idempotency begin failed, proceeding", zap.String("key", key), zap.Error(err))
		return 0, nil
	}
	if ok {
		return 0, nil
	}

	val, err := g.rdb.Get(ctx, keyPrefix+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		g.log.Warn("idempotency lookup failed, proceeding", zap.String("key", key), zap.Error(err))
		return 0, nil
	}

	if strings.HasPrefix(val, donePrefix) {
		id, err := strconv.ParseUint(strings.TrimPrefix(val, donePrefix), 10, 64)
		if err == nil {
			return uint(id), nil
		}
	}

	return 0, httperr.ErrConflict(CodeInFlight, "The same request is already being processed.")
}

// Complete records the booking id created under key.
func (g *Guard) Complete(ctx context.Context, key string, id uint) {
	if g == nil || key == "" {
		return
	}
	val := donePrefix + strconv.FormatUint(uint64(id), 10)
	if err := g.rdb.Set(ctx, keyPrefix+key, val, g.ttl).Err(); err != nil {
		g.log.Warn("idempotency complete failed", zap.String("key", key), zap.Error(err))
	}
}

// Abort removes the marker so the request may be retried.
func (g *Guard) Abort(ctx context.Context, key string) {
	if g == nil || key == "" {
		return
	}
	if err := g.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		g.log.Warn("idempotency abort failed", zap.String("key", key), zap.Error(err))
	}
}
