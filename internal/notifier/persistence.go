package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/repository"
	"github.com/unilib/portal-api/pkg/metrics"
)

// PersistenceSink writes the user-visible notification row and, when the
// event carries an idempotency key, the notification-log marker. A key
// already present means the event was delivered before; the row write is
// skipped.
type PersistenceSink struct {
	repo    repository.NotificationRepository
	metrics *metrics.Metrics
}

func NewPersistenceSink(repo repository.NotificationRepository, metrics *metrics.Metrics) *PersistenceSink {
	return &PersistenceSink{repo: repo, metrics: metrics}
}

func (s *PersistenceSink) Update(ctx context.Context, event *model.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event payload: %w", err)
	}

	if event.Key != "" {
		inserted, err := s.repo.LogEventKey(ctx, &model.NotificationLogEntry{
			EventKey: event.Key,
			Payload:  string(payload),
		})
		if err != nil {
			return fmt.Errorf("failed to record event key: %w", err)
		}
		if !inserted {
			s.metrics.NotificationsSuppressed.Inc()
			return nil
		}
	}

	n := &model.Notification{
		UserID:  event.UserID,
		Type:    event.Type,
		Title:   notificationTitle(event),
		Message: notificationMessage(event),
		Payload: string(payload),
		Sent:    false,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}
	event.NotificationID = n.ID
	return nil
}

func notificationTitle(event *model.NotificationEvent) string {
	switch event.Type {
	case model.EventItemDueToday:
		return "Devolução hoje"
	case model.EventItemOverdue:
		return "Devolução atrasada"
	case model.EventItemAvailable:
		return "Item disponível"
	default:
		return string(event.Type)
	}
}

func notificationMessage(event *model.NotificationEvent) string {
	switch event.Type {
	case model.EventItemDueToday:
		return fmt.Sprintf("O item \"%s\" deve ser devolvido hoje.", event.Title)
	case model.EventItemOverdue:
		return fmt.Sprintf("O item \"%s\" está atrasado há %d dia(s).", event.Title, event.DaysOverdue)
	case model.EventItemAvailable:
		return fmt.Sprintf("O item \"%s\" está disponível para retirada.", event.Title)
	default:
		return event.Title
	}
}
