package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel shared by all instances
const DefaultRedisChannel = "inquiries:changes"

// NewRedisClient parses a redis:// URL and pings the server
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisRelay shares changes with other instances over Redis pub/sub.
// Outgoing changes are stamped with this instance's origin; incoming
// changes from any other origin are handed to the local publisher.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	local   Publisher
	logger  *slog.Logger
}

// NewRedisRelay creates a relay that forwards remote changes to local
func NewRedisRelay(client *redis.Client, local Publisher, logger *slog.Logger) *RedisRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRelay{
		client:  client,
		channel: DefaultRedisChannel,
		origin:  uuid.NewString(),
		local:   local,
		logger:  logger,
	}
}

// Origin returns the identifier stamped on changes sent by this instance
func (r *RedisRelay) Origin() string {
	return r.origin
}

// Publish implements Publisher by sending the change to the shared channel
func (r *RedisRelay) Publish(ctx context.Context, change Change) {
	if change.Origin == "" {
		change.Origin = r.origin
	}
	if change.Origin != r.origin {
		// Already relayed from elsewhere
		return
	}

	data, err := json.Marshal(change)
	if err != nil {
		r.logger.Error("failed to marshal change", slog.Any("error", err))
		return
	}

	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Warn("failed to relay change",
			slog.String("channel", r.channel),
			slog.Any("error", err),
		)
	}
}

// Run subscribes to the shared channel until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("change relay subscribed", slog.String("channel", r.channel), slog.String("origin", r.origin))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(ctx context.Context, payload string) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		r.logger.Warn("dropping malformed change", slog.Any("error", err))
		return
	}
	if change.Origin == r.origin || change.Table != TableInquiries {
		return
	}
	if r.local != nil {
		r.local.Publish(ctx, change)
	}
}
