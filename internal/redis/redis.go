package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewClient connects to redis for the flight-search response cache. Returns
// nil when no address is configured or the server is unreachable; callers
// treat a nil client as "caching disabled".
func NewClient(address, username, password string) *redis.Client {
	if address == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("address", address).
			Msg("redis unreachable, search caching disabled")
		return nil
	}
	log.Info().Str("address", address).Msg("connected to redis")
	return rdb
}
