package production

import "context"

// EventPublisher forwards EventRecords to an external sink — a message
// queue, log aggregator, or test harness channel.
type EventPublisher interface {
	Publish(ctx context.Context, record EventRecord) error
	Close() error
}

// ChannelPublisher forwards records to a Go channel, dropping on
// backpressure rather than blocking the interpreter's fire-and-forget
// snapshot hook.
type ChannelPublisher struct {
	ch chan<- EventRecord
}

func NewChannelPublisher(ch chan<- EventRecord) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, record EventRecord) error {
	select {
	case p.ch <- record:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
