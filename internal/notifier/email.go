package notifier

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/unilib/portal-api/internal/email"
	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/repository"
	"github.com/unilib/portal-api/pkg/logger"
)

// EmailSink dispatches a templated message per event type. A missing
// recipient is a warning, not an error, and a delivery failure never
// propagates past the sink. Successful delivery flips the persisted
// notification row's sent flag when the persistence sink ran first.
type EmailSink struct {
	sender email.Sender
	repo   repository.NotificationRepository
	logger *logger.Logger
}

func NewEmailSink(sender email.Sender, repo repository.NotificationRepository, logger *logger.Logger) *EmailSink {
	return &EmailSink{sender: sender, repo: repo, logger: logger}
}

func (s *EmailSink) Update(ctx context.Context, event *model.NotificationEvent) error {
	if event.Email == "" {
		s.logger.Warn("notification event has no recipient email",
			"event_type", string(event.Type),
			"reservation_id", event.ReservationID.String())
		return nil
	}

	subject, body := emailTemplate(event)
	if err := s.sender.Send(ctx, event.Email, subject, body); err != nil {
		s.logger.Error(err, "email delivery failed",
			"event_type", string(event.Type),
			"recipient", event.Email)
		return nil
	}

	if event.NotificationID != uuid.Nil {
		if err := s.repo.MarkSent(ctx, event.NotificationID); err != nil {
			s.logger.Error(err, "failed to mark notification sent",
				"notification_id", event.NotificationID.String())
		}
	}
	return nil
}

func emailTemplate(event *model.NotificationEvent) (subject, body string) {
	switch event.Type {
	case model.EventItemDueToday:
		subject = "Biblioteca: devolução hoje"
		body = fmt.Sprintf(
			"O item \"%s\" deve ser devolvido hoje (%s). Evite bloqueio da sua conta devolvendo no prazo.",
			event.Title, event.DueBack.Format("02/01/2006"))
	case model.EventItemOverdue:
		subject = "Biblioteca: devolução atrasada"
		body = fmt.Sprintf(
			"O item \"%s\" está com devolução atrasada há %d dia(s) (prazo: %s). Regularize sua situação na biblioteca.",
			event.Title, event.DaysOverdue, event.DueBack.Format("02/01/2006"))
	case model.EventItemAvailable:
		subject = "Biblioteca: item disponível"
		body = fmt.Sprintf("O item \"%s\" está disponível para retirada.", event.Title)
	default:
		subject = "Biblioteca"
		body = event.Title
	}
	return subject, body
}
