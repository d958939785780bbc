package publisher

import "context"

// Message is one encoded event and the source it came from
type Message struct {
	Source string
	Data   []byte
}

// Publisher represents a service for publishing scraped events to a feed
type Publisher interface {
	// PublishBatch publishes every message in one round trip
	PublishBatch(ctx context.Context, messages []Message) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
