package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

const (
	lockTTL        = 30 * time.Second
	lockRetries    = 3
	lockRetryDelay = 100 * time.Millisecond
)

// releaseScript deletes the lock only if the caller still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// ShipmentLock serializes lifecycle operations per shipment aggregate across
// instances. Key format: lock:shipment:<id>, SET NX with a TTL as a crash
// guard.
type ShipmentLock struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewShipmentLock creates a ShipmentLock wrapping the given Redis client.
func NewShipmentLock(client *redis.Client, log zerolog.Logger) *ShipmentLock {
	return &ShipmentLock{client: client, log: log}
}

// Acquire takes the per-shipment lock, retrying briefly before giving up with
// domain.ErrAggregateLocked. The returned release function is safe to call
// exactly once.
func (l *ShipmentLock) Acquire(ctx context.Context, shipmentID string) (func(), error) {
	key := l.key(shipmentID)
	token := newToken()

	for attempt := 0; ; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire shipment lock: %w", err)
		}
		if ok {
			break
		}
		if attempt >= lockRetries {
			return nil, fmt.Errorf("shipment %s: %w", shipmentID, domain.ErrAggregateLocked)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	release := func() {
		// Release with a fresh context: the operation's context may already
		// be cancelled by the time the deferred release runs.
		releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("shipment_id", shipmentID).Msg("failed to release shipment lock")
		}
	}
	return release, nil
}

func (l *ShipmentLock) key(shipmentID string) string {
	return "lock:shipment:" + shipmentID
}

func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
