package feed

import (
	"context"
	"fmt"
	"io"

	"github.com/go-redis/redis/v8"
)

// RedisSource receives command lines published to a Redis channel.
// Every message payload is a single line.
type RedisSource struct {
	pubsub *redis.PubSub
	ch     <-chan *redis.Message
}

// NewRedisSource subscribes to channel and waits for the subscription to be
// confirmed, so no message published after it returns is missed.
func NewRedisSource(ctx context.Context, client *redis.Client, channel string) (*RedisSource, error) {
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("feed: subscribe to %q: %w", channel, err)
	}
	return &RedisSource{
		pubsub: pubsub,
		ch:     pubsub.Channel(),
	}, nil
}

// Next implements Source.
// It returns io.EOF after source is closed.
func (s *RedisSource) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case msg, ok := <-s.ch:
		if !ok {
			return "", io.EOF
		}
		return msg.Payload, nil
	}
}

// Close unsubscribes from the channel.
func (s *RedisSource) Close() error {
	return s.pubsub.Close()
}
