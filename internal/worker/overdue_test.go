package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/notifier"
	"github.com/unilib/portal-api/pkg/logger"
	"github.com/unilib/portal-api/pkg/metrics"
)

type sweepLedger struct {
	dueToday []*model.Reservation
	overdue  []*model.Reservation
}

func (f *sweepLedger) Create(_ context.Context, _ *model.Reservation) error { return nil }
func (f *sweepLedger) Get(_ context.Context, _ uuid.UUID) (*model.Reservation, error) {
	return nil, nil
}
func (f *sweepLedger) FindActiveByItem(_ context.Context, _ int64) (*model.Reservation, error) {
	return nil, nil
}
func (f *sweepLedger) FindActiveByUserAndItem(_ context.Context, _ uuid.UUID, _ int64) (*model.Reservation, error) {
	return nil, nil
}
func (f *sweepLedger) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.ReservationStatus, _ *time.Time) (int64, error) {
	return 0, nil
}
func (f *sweepLedger) UpdateDueBack(_ context.Context, _ uuid.UUID, _ time.Time) (int64, error) {
	return 0, nil
}
func (f *sweepLedger) List(_ context.Context, _ *model.ReservationFilters) ([]*model.Reservation, error) {
	return nil, nil
}
func (f *sweepLedger) FindFulfilledDueOn(_ context.Context, _ time.Time) ([]*model.Reservation, error) {
	return f.dueToday, nil
}
func (f *sweepLedger) FindFulfilledDueBefore(_ context.Context, _ time.Time) ([]*model.Reservation, error) {
	return f.overdue, nil
}

type sweepUsers struct {
	emails map[uuid.UUID]string
	errFor map[uuid.UUID]error
}

func (f *sweepUsers) FindByID(_ context.Context, _ uuid.UUID) (*model.User, error) {
	return nil, nil
}
func (f *sweepUsers) FindEmail(_ context.Context, id uuid.UUID) (string, error) {
	if err, ok := f.errFor[id]; ok {
		return "", err
	}
	return f.emails[id], nil
}
func (f *sweepUsers) BlockState(_ context.Context, _ uuid.UUID) (*model.AccountBlockState, error) {
	return &model.AccountBlockState{}, nil
}

type sweepLog struct {
	keys map[string]string
}

func newSweepLog() *sweepLog { return &sweepLog{keys: make(map[string]string)} }

func (f *sweepLog) Create(_ context.Context, _ *model.Notification) error { return nil }
func (f *sweepLog) MarkSent(_ context.Context, _ uuid.UUID) error         { return nil }
func (f *sweepLog) LogEventKey(_ context.Context, entry *model.NotificationLogEntry) (bool, error) {
	if _, ok := f.keys[entry.EventKey]; ok {
		return false, nil
	}
	f.keys[entry.EventKey] = entry.Payload
	return true, nil
}
func (f *sweepLog) HasEventKey(_ context.Context, eventKey string) (bool, error) {
	_, ok := f.keys[eventKey]
	return ok, nil
}

type captureSink struct {
	events []*model.NotificationEvent
}

func (s *captureSink) Update(_ context.Context, event *model.NotificationEvent) error {
	copied := *event
	s.events = append(s.events, &copied)
	return nil
}

type fakeLease struct {
	held bool
}

func (l *fakeLease) Acquire(_ context.Context) (bool, error) { return !l.held, nil }
func (l *fakeLease) Release(_ context.Context) error         { return nil }

func fulfilledReservation(userID uuid.UUID, dueBack time.Time) *model.Reservation {
	return &model.Reservation{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   "Sistemas Operacionais",
		Status:  model.ReservationStatusFulfilled,
		DueBack: &dueBack,
	}
}

func newScheduler(ledger *sweepLedger, users *sweepUsers, log *sweepLog, sink *captureSink, lease Lease) *OverdueScheduler {
	l := logger.NewLogger(nil)
	m := metrics.New("test")

	bus := notifier.NewSubject(l)
	bus.Attach(notifier.NewPersistenceSink(log, m))
	bus.Attach(sink)

	return NewOverdueScheduler(ledger, users, log, bus, lease, time.Hour, l, m)
}

func TestSweepEmitsDueTodayAndOverdue(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	ledger := &sweepLedger{
		dueToday: []*model.Reservation{fulfilledReservation(userID, now)},
		overdue:  []*model.Reservation{fulfilledReservation(userID, now.AddDate(0, 0, -3))},
	}
	users := &sweepUsers{emails: map[uuid.UUID]string{userID: "aluno@universidade.edu.br"}}
	sink := &captureSink{}

	scheduler := newScheduler(ledger, users, newSweepLog(), sink, nil)

	summary, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DueCount)
	assert.Equal(t, 1, summary.OverdueCount)

	require.Len(t, sink.events, 2)
	assert.Equal(t, model.EventItemDueToday, sink.events[0].Type)
	assert.Equal(t, model.EventItemOverdue, sink.events[1].Type)
	assert.Equal(t, 3, sink.events[1].DaysOverdue)
	assert.Equal(t, "aluno@universidade.edu.br", sink.events[0].Email)
}

func TestSecondSweepIsSuppressedByLogKey(t *testing.T) {
	userID := uuid.New()
	yesterday := time.Now().AddDate(0, 0, -1)

	ledger := &sweepLedger{overdue: []*model.Reservation{fulfilledReservation(userID, yesterday)}}
	users := &sweepUsers{emails: map[uuid.UUID]string{userID: "aluno@universidade.edu.br"}}
	log := newSweepLog()
	sink := &captureSink{}

	scheduler := newScheduler(ledger, users, log, sink, nil)

	summary, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OverdueCount)
	require.Len(t, sink.events, 1)
	assert.Equal(t, 1, sink.events[0].DaysOverdue)
	assert.Len(t, log.keys, 1)

	// Same data, same day: nothing new is emitted or logged.
	summary, err = scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.OverdueCount)
	assert.Len(t, sink.events, 1)
	assert.Len(t, log.keys, 1)
}

func TestSweepSkipsRowsWithoutEmail(t *testing.T) {
	withEmail := uuid.New()
	withoutEmail := uuid.New()
	yesterday := time.Now().AddDate(0, 0, -1)

	ledger := &sweepLedger{overdue: []*model.Reservation{
		fulfilledReservation(withoutEmail, yesterday),
		fulfilledReservation(withEmail, yesterday),
	}}
	users := &sweepUsers{emails: map[uuid.UUID]string{withEmail: "aluno@universidade.edu.br"}}
	sink := &captureSink{}

	scheduler := newScheduler(ledger, users, newSweepLog(), sink, nil)

	summary, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OverdueCount)
	require.Len(t, sink.events, 1)
	assert.Equal(t, withEmail, sink.events[0].UserID)
}

func TestSweepIsolatesPerRowFailures(t *testing.T) {
	failing := uuid.New()
	healthy := uuid.New()
	yesterday := time.Now().AddDate(0, 0, -1)

	ledger := &sweepLedger{overdue: []*model.Reservation{
		fulfilledReservation(failing, yesterday),
		fulfilledReservation(healthy, yesterday),
	}}
	users := &sweepUsers{
		emails: map[uuid.UUID]string{healthy: "aluno@universidade.edu.br"},
		errFor: map[uuid.UUID]error{failing: errors.New("directory down")},
	}
	sink := &captureSink{}

	scheduler := newScheduler(ledger, users, newSweepLog(), sink, nil)

	summary, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OverdueCount)
}

func TestSweepSkipsWhenLeaseHeldElsewhere(t *testing.T) {
	userID := uuid.New()
	yesterday := time.Now().AddDate(0, 0, -1)

	ledger := &sweepLedger{overdue: []*model.Reservation{fulfilledReservation(userID, yesterday)}}
	users := &sweepUsers{emails: map[uuid.UUID]string{userID: "aluno@universidade.edu.br"}}
	sink := &captureSink{}

	scheduler := newScheduler(ledger, users, newSweepLog(), sink, &fakeLease{held: true})

	summary, err := scheduler.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.DueCount)
	assert.Equal(t, 0, summary.OverdueCount)
	assert.Empty(t, sink.events)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			"three full days",
			time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
			time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local),
			3,
		},
		{
			"time of day does not skew the count",
			time.Date(2025, 1, 7, 23, 59, 0, 0, time.Local),
			time.Date(2025, 1, 10, 0, 1, 0, 0, time.Local),
			3,
		},
		{
			"same day",
			time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local),
			time.Date(2025, 1, 10, 20, 0, 0, 0, time.Local),
			0,
		},
		{
			"one day",
			time.Date(2025, 1, 9, 12, 0, 0, 0, time.Local),
			time.Date(2025, 1, 10, 6, 0, 0, 0, time.Local),
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.from, tt.to))
		})
	}
}
