package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trail-backend/internal/logger"
)

// RedisClients holds one client per role. They share a server but not a
// connection pool, so workers parked in BRPOP never starve session reads.
type RedisClients struct {
	Queue    *redis.Client // job queue and job locks
	Sessions *redis.Client // wizard and quiz session JSON
	PubSub   *redis.Client // websocket fan-out
}

type RedisOptions struct {
	// QueueWait is the longest BRPOP a worker issues.
	QueueWait time.Duration
	// Workers is the number of goroutines blocking on the queue.
	Workers int
	// SessionDB selects a logical database for sessions. Negative keeps the
	// database named in the URL.
	SessionDB int
}

const sessionIOTimeout = 3 * time.Second

func NewRedisClients(redisURL string, opts RedisOptions, log *logger.Logger) (*RedisClients, error) {
	base, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	queueOpt := *base
	queueOpt.ClientName = "trail-queue"
	// BRPOP holds its connection for the whole wait.
	queueOpt.ReadTimeout = opts.QueueWait + 5*time.Second
	if opts.Workers > 0 {
		queueOpt.PoolSize = opts.Workers + 2
	}

	sessionOpt := *base
	sessionOpt.ClientName = "trail-sessions"
	sessionOpt.ReadTimeout = sessionIOTimeout
	sessionOpt.WriteTimeout = sessionIOTimeout
	if opts.SessionDB >= 0 {
		sessionOpt.DB = opts.SessionDB
	}

	pubsubOpt := *base
	pubsubOpt.ClientName = "trail-pubsub"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clients := &RedisClients{}
	roles := []struct {
		name string
		opt  *redis.Options
		dst  **redis.Client
	}{
		{"queue", &queueOpt, &clients.Queue},
		{"sessions", &sessionOpt, &clients.Sessions},
		{"pubsub", &pubsubOpt, &clients.PubSub},
	}
	for _, role := range roles {
		client := redis.NewClient(role.opt)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			clients.Close()
			return nil, fmt.Errorf("failed to ping Redis (%s): %w", role.name, err)
		}
		*role.dst = client
		log.Info("redis client ready", "role", role.name, "addr", role.opt.Addr, "db", role.opt.DB)
	}

	return clients, nil
}

func (r *RedisClients) Close() {
	for _, c := range []*redis.Client{r.Queue, r.Sessions, r.PubSub} {
		if c != nil {
			c.Close()
		}
	}
}
