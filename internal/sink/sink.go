package sink

import (
	"context"

	"blockScope/internal/model"
)

// Sink receives crawl events in commit order.
type Sink interface {
	Accept(ctx context.Context, ev model.Event) error
	Close() error
}

// BatchSink accepts all events of one block in a single write.
type BatchSink interface {
	Sink
	AcceptBatch(ctx context.Context, events []model.Event) error
}

// Replayer is implemented by sinks that tolerate receiving the same events
// again after a failed delivery.
type Replayer interface {
	Replayable(events []model.Event) bool
}

// Replayable reports whether events may be redelivered to s after a partial
// write without producing duplicates.
func Replayable(s Sink, events []model.Event) bool {
	r, ok := s.(Replayer)
	return ok && r.Replayable(events)
}

// Deliver hands events to s, as one batch when s supports it.
func Deliver(ctx context.Context, s Sink, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	if b, ok := s.(BatchSink); ok {
		return b.AcceptBatch(ctx, events)
	}
	for _, ev := range events {
		if err := s.Accept(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
