package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"
)

// RedisRelay bridges buses in different processes over one pub/sub channel.
// Redis echoes published messages back to our own subscription, so each
// frame carries the relay's origin id and the receive loop drops its own.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	cancel  context.CancelFunc
}

type frame struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

func NewRedisRelay(url, channel string) (*RedisRelay, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
	}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(frame{Origin: r.origin, Event: ev})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (r *RedisRelay) Listen(dispatch func(Event)) {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	pubsub := r.client.Subscribe(ctx, r.channel)

	go func() {
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var f frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				logger.Debug.Printf("dropping malformed relay frame: %v", err)
				continue
			}
			if f.Origin == r.origin {
				continue
			}
			dispatch(f.Event)
		}
	}()
}

func (r *RedisRelay) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	return r.client.Close()
}
