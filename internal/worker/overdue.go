package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/notifier"
	"github.com/unilib/portal-api/internal/repository"
	"github.com/unilib/portal-api/pkg/logger"
	"github.com/unilib/portal-api/pkg/metrics"
)

// OverdueScheduler sweeps the ledger for fulfilled reservations due
// today or overdue and pushes events through the notification bus.
//
// Duplicate suppression: the sweep pre-checks the event-key log and
// skips emission when a matching key already exists, so each logical
// event reaches the sinks at most once. The persistence sink's
// INSERT-IGNORE on the same key is the backstop if two runners race
// past the pre-check.
type OverdueScheduler struct {
	ledger   repository.ReservationRepository
	users    repository.UserDirectory
	log      repository.NotificationRepository
	bus      *notifier.Subject
	lease    Lease
	interval time.Duration
	logger   *logger.Logger
	metrics  *metrics.Metrics
	inFlight atomic.Bool
}

func NewOverdueScheduler(
	ledger repository.ReservationRepository,
	users repository.UserDirectory,
	log repository.NotificationRepository,
	bus *notifier.Subject,
	lease Lease,
	interval time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OverdueScheduler {
	return &OverdueScheduler{
		ledger:   ledger,
		users:    users,
		log:      log,
		bus:      bus,
		lease:    lease,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start runs the recurring sweep until the context is cancelled.
func (s *OverdueScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting overdue scheduler", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down overdue scheduler")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error(err, "overdue sweep failed")
			}
		}
	}
}

// Sweep runs one pass and reports how many due-today and overdue events
// it emitted. A sweep already in flight in this process, or a lease held
// by another process, skips the run.
func (s *OverdueScheduler) Sweep(ctx context.Context) (*model.SweepSummary, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.metrics.SweepsSkipped.Inc()
		return &model.SweepSummary{}, nil
	}
	defer s.inFlight.Store(false)

	if s.lease != nil {
		acquired, err := s.lease.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		if !acquired {
			s.metrics.SweepsSkipped.Inc()
			s.logger.Debug("sweep lease held elsewhere, skipping")
			return &model.SweepSummary{}, nil
		}
		defer func() {
			if err := s.lease.Release(ctx); err != nil {
				s.logger.Error(err, "failed to release sweep lease")
			}
		}()
	}

	timer := prometheus.NewTimer(s.metrics.SweepDuration)
	defer timer.ObserveDuration()

	today := time.Now()
	summary := &model.SweepSummary{}

	dueToday, err := s.ledger.FindFulfilledDueOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("due-today query failed: %w", err)
	}
	for _, res := range dueToday {
		if s.emitDueToday(ctx, res, today) {
			summary.DueCount++
		}
	}

	overdue, err := s.ledger.FindFulfilledDueBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("overdue query failed: %w", err)
	}
	for _, res := range overdue {
		if s.emitOverdue(ctx, res, today) {
			summary.OverdueCount++
		}
	}

	s.logger.Info("overdue sweep finished",
		"due_count", summary.DueCount,
		"overdue_count", summary.OverdueCount)
	return summary, nil
}

func (s *OverdueScheduler) emitDueToday(ctx context.Context, res *model.Reservation, today time.Time) bool {
	key := model.DueTodayKey(res.ID, today)
	event := &model.NotificationEvent{
		Type:          model.EventItemDueToday,
		Key:           key,
		ReservationID: res.ID,
		UserID:        res.UserID,
		Title:         res.Title,
		DueBack:       *res.DueBack,
	}
	return s.emit(ctx, res, event)
}

func (s *OverdueScheduler) emitOverdue(ctx context.Context, res *model.Reservation, today time.Time) bool {
	key := model.OverdueKey(res.ID, today)
	event := &model.NotificationEvent{
		Type:          model.EventItemOverdue,
		Key:           key,
		ReservationID: res.ID,
		UserID:        res.UserID,
		Title:         res.Title,
		DueBack:       *res.DueBack,
		DaysOverdue:   DaysBetween(*res.DueBack, today),
	}
	return s.emit(ctx, res, event)
}

// emit resolves the recipient, pre-checks the idempotency log and pushes
// the event. A failure on one row never aborts the sweep.
func (s *OverdueScheduler) emit(ctx context.Context, res *model.Reservation, event *model.NotificationEvent) bool {
	logged, err := s.log.HasEventKey(ctx, event.Key)
	if err != nil {
		s.logger.Error(err, "idempotency pre-check failed", "event_key", event.Key)
		return false
	}
	if logged {
		s.metrics.NotificationsSuppressed.Inc()
		return false
	}

	addr, err := s.users.FindEmail(ctx, res.UserID)
	if err != nil {
		s.logger.Error(err, "failed to resolve recipient email",
			"reservation_id", res.ID.String())
		return false
	}
	if addr == "" {
		return false
	}
	event.Email = addr

	s.bus.Notify(ctx, event)
	s.metrics.NotificationsEmitted.WithLabelValues(string(event.Type)).Inc()
	return true
}

// DaysBetween counts whole calendar days from 'from' to 'to', truncating
// both to local midnight first so time-of-day and DST never skew the
// count.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Local().Date()
	ty, tm, td := to.Local().Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}
