package events

import "context"

// NoopPublisher drops every event. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }

var (
	_ Publisher = NoopPublisher{}
	_ Publisher = (*NATSPublisher)(nil)
)
