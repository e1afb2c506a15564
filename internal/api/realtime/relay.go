package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RelayMessage is a broadcast shared between api replicas
type RelayMessage struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisRelay shares broadcasts between replicas over a Redis pub/sub channel.
// Each replica ignores the messages it published itself.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	logger  *slog.Logger
}

func NewRedisRelay(client *redis.Client, channel string, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.New().String(),
		logger:  logger,
	}
}

func (r *RedisRelay) Publish(ctx context.Context, msg RelayMessage) error {
	msg.Origin = r.origin

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode relay message: %w", err)
	}

	if err := r.client.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish relay message: %w", err)
	}
	return nil
}

// Run delivers messages from other replicas to hub until ctx is done
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	r.logger.Info("Realtime relay subscribed", slog.String("channel", r.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(msg.Payload, hub.Deliver)
		}
	}
}

func (r *RedisRelay) handle(payload string, deliver func(room string, frame []byte)) {
	var msg RelayMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		r.logger.Warn("Dropping malformed relay message", slog.Any("error", err))
		return
	}

	if msg.Origin == r.origin {
		return
	}

	deliver(msg.Room, msg.Frame)
}
