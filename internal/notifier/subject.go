package notifier

import (
	"context"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/pkg/logger"
)

// Sink is the contract any fan-out target implements.
type Sink interface {
	Update(ctx context.Context, event *model.NotificationEvent) error
}

// Subject fans typed events out to registered sinks. It is built by the
// application root and passed by reference; there is no package-level
// instance. Not safe for concurrent Attach after Notify has started,
// which matches its lifecycle: sinks attach at boot.
type Subject struct {
	sinks  []Sink
	logger *logger.Logger
}

func NewSubject(logger *logger.Logger) *Subject {
	return &Subject{logger: logger}
}

// Attach registers a sink. Attaching the same sink reference twice is a
// no-op.
func (s *Subject) Attach(sink Sink) {
	for _, existing := range s.sinks {
		if existing == sink {
			return
		}
	}
	s.sinks = append(s.sinks, sink)
}

// Notify delivers the event to every sink sequentially. One sink's
// failure is logged and does not stop delivery to the rest.
func (s *Subject) Notify(ctx context.Context, event *model.NotificationEvent) {
	for _, sink := range s.sinks {
		if err := sink.Update(ctx, event); err != nil {
			s.logger.Error(err, "notification sink failed",
				"event_type", string(event.Type),
				"event_key", event.Key)
		}
	}
}
