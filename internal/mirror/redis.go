// Package mirror republishes every snapshot to redis pub/sub so other
// services can consume the stream without a websocket connection. Delivery
// is best effort; a redis outage is logged, never fatal.
package mirror

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yomariano/futurezxyback/internal/model"
)

const publishTimeout = 2 * time.Second

// Mirror publishes snapshot payloads to one redis channel per series.
type Mirror struct {
	rdb    *redis.Client
	prefix string
}

// New connects and verifies the server is reachable.
func New(addr, password string, db int, prefix string) (*Mirror, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("mirror: redis ping: %w", err)
	}
	return &Mirror{rdb: rdb, prefix: prefix}, nil
}

// Client exposes the underlying connection for health checks.
func (m *Mirror) Client() *redis.Client { return m.rdb }

// Close releases the connection pool.
func (m *Mirror) Close() error { return m.rdb.Close() }

// Run publishes every envelope to "<prefix>:<symbol>:<timeframe>" until the
// input closes or ctx is cancelled.
func (m *Mirror) Run(ctx context.Context, in <-chan model.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-in:
			if !ok {
				return
			}
			m.publish(ctx, env)
		}
	}
}

func (m *Mirror) publish(ctx context.Context, env model.Envelope) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	channel := m.prefix + ":" + env.Key.String()
	if err := m.rdb.Publish(pubCtx, channel, env.Payload).Err(); err != nil {
		log.Printf("[mirror] publish %s: %v", channel, err)
	}
}
