package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Sample is the JSON payload published on the redis channel.
type Sample struct {
	Name       string            `json:"name"`
	Value      float64           `json:"value"`
	Dimensions map[string]string `json:"dimensions"`
	Timestamp  time.Time         `json:"ts"`
}

// RedisReporter publishes every sample on a pub/sub channel.
type RedisReporter struct {
	client  publisher
	Channel string
	now     func() time.Time
}

func NewRedisReporter(client *redis.Client, channel string) *RedisReporter {
	return &RedisReporter{client: client, Channel: channel, now: time.Now}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func (r *RedisReporter) Report(ctx context.Context, name string, value float64, dims map[string]string) error {
	body, err := json.Marshal(Sample{
		Name:       name,
		Value:      value,
		Dimensions: dims,
		Timestamp:  r.now().UTC(),
	})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.Channel, body).Err()
}
