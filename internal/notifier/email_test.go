package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/pkg/logger"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestEmailSinkSkipsMissingRecipient(t *testing.T) {
	sender := &fakeSender{}
	sink := NewEmailSink(sender, newFakeNotificationRepo(), logger.NewLogger(nil))

	err := sink.Update(context.Background(), &model.NotificationEvent{Type: model.EventItemOverdue})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestEmailSinkSwallowsDeliveryFailure(t *testing.T) {
	sender := &fakeSender{err: assert.AnError}
	repo := newFakeNotificationRepo()
	sink := NewEmailSink(sender, repo, logger.NewLogger(nil))

	err := sink.Update(context.Background(), &model.NotificationEvent{
		Type:           model.EventItemDueToday,
		Email:          "aluno@universidade.edu.br",
		DueBack:        time.Now(),
		NotificationID: uuid.New(),
	})
	assert.NoError(t, err)
	assert.Empty(t, repo.sentIDs)
}

func TestEmailSinkMarksRowSentAfterDelivery(t *testing.T) {
	sender := &fakeSender{}
	repo := newFakeNotificationRepo()
	sink := NewEmailSink(sender, repo, logger.NewLogger(nil))

	id := uuid.New()
	err := sink.Update(context.Background(), &model.NotificationEvent{
		Type:           model.EventItemOverdue,
		Email:          "aluno@universidade.edu.br",
		DueBack:        time.Now(),
		DaysOverdue:    2,
		NotificationID: id,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []uuid.UUID{id}, repo.sentIDs)
}

func TestEmailTemplates(t *testing.T) {
	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local)

	subject, body := emailTemplate(&model.NotificationEvent{
		Type:        model.EventItemOverdue,
		Title:       "Redes de Computadores",
		DueBack:     due,
		DaysOverdue: 3,
	})
	assert.Contains(t, subject, "atrasada")
	assert.Contains(t, body, "3 dia(s)")
	assert.Contains(t, body, "10/01/2025")

	subject, body = emailTemplate(&model.NotificationEvent{
		Type:    model.EventItemDueToday,
		Title:   "Redes de Computadores",
		DueBack: due,
	})
	assert.Contains(t, subject, "hoje")
	assert.Contains(t, body, "Redes de Computadores")
}
