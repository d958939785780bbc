package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"strconv"

	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisPublisher
type RedisOptions struct {
	Addr            string
	DB              int
	StreamPrefix    string
	StreamCount     int
	StreamMaxLength int
}

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(opts RedisOptions) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})

	count := opts.StreamCount
	if count < 1 {
		count = 1
	}

	return &RedisPublisher{
		client:          client,
		streamPrefix:    opts.StreamPrefix,
		streamCount:     count,
		streamMaxLength: opts.StreamMaxLength,
	}
}

// Ping checks that the Redis server is reachable
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return scrapeerrors.NewPublisher("redis", "ping failed", err)
	}
	return nil
}

// stream picks one of the partitioned streams at random.
// With a count of 3 the streams are prefix:0 to prefix:2.
func (p *RedisPublisher) stream() string {
	return p.streamPrefix + ":" + strconv.Itoa(rand.IntN(p.streamCount))
}

// PublishBatch publishes messages through a single pipeline.
// Each message is base64 encoded and sent to a randomly chosen stream.
func (p *RedisPublisher) PublishBatch(ctx context.Context, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, msg := range messages {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: p.stream(),
				Values: map[string]interface{}{
					msg.Source: base64.StdEncoding.EncodeToString(msg.Data),
				},
			})
		}
		return nil
	})
	if err != nil {
		return scrapeerrors.NewPublisher("redis", fmt.Sprintf("failed to publish %d events", len(messages)), err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	streams, err := p.client.Keys(ctx, p.streamPrefix+":*").Result()
	if err != nil {
		return scrapeerrors.NewPublisher("redis", "failed to list streams", err)
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return scrapeerrors.NewPublisher("redis", "failed to trim stream "+stream, err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
