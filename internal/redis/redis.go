// Package redis provides the optional heartbeat marker used to suppress
// redundant browser last-seen writes across racing polls. The service works
// without it; all operations fail open.
package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const heartbeatTTL = 60 * time.Second

type Client struct {
	rdb *redis.Client
}

func New(address, username, password string) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     address,
			Username: username,
			Password: password,
			DB:       0,
		}),
	}
}

// Mark records a heartbeat for the browser and reports whether the caller
// should persist last_seen. A false return means another request already
// refreshed the browser within the TTL. Redis errors report true so the
// database write still happens.
func (c *Client) Mark(ctx context.Context, identifier uuid.UUID) bool {
	ok, err := c.rdb.SetNX(ctx, "kiosk:heartbeat:"+identifier.String(), 1, heartbeatTTL).Result()
	if err != nil {
		log.Warn().Err(err).Msg("redis heartbeat marker unavailable")
		return true
	}
	return ok
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
