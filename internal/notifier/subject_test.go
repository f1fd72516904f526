package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/pkg/logger"
)

type recordingSink struct {
	events []*model.NotificationEvent
	err    error
}

func (s *recordingSink) Update(_ context.Context, event *model.NotificationEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func TestAttachSameSinkTwiceIsNoop(t *testing.T) {
	subject := NewSubject(logger.NewLogger(nil))
	sink := &recordingSink{}

	subject.Attach(sink)
	subject.Attach(sink)
	subject.Notify(context.Background(), &model.NotificationEvent{Type: model.EventItemOverdue})

	assert.Len(t, sink.events, 1)
}

func TestNotifyIsolatesFailingSink(t *testing.T) {
	subject := NewSubject(logger.NewLogger(nil))
	failing := &recordingSink{err: assert.AnError}
	healthy := &recordingSink{}

	subject.Attach(failing)
	subject.Attach(healthy)
	subject.Notify(context.Background(), &model.NotificationEvent{Type: model.EventItemDueToday})

	assert.Len(t, failing.events, 1)
	assert.Len(t, healthy.events, 1)
}
