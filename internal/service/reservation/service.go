package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/repository"
	"github.com/unilib/portal-api/internal/service/legacysync"
	apperrors "github.com/unilib/portal-api/pkg/errors"
	"github.com/unilib/portal-api/pkg/logger"
	"github.com/unilib/portal-api/pkg/metrics"
)

const pickupDateLayout = "2006-01-02"

// Service is the single entry point for the reservation lifecycle. It
// validates every cross-system invariant before committing to the
// ledger, then mirrors the transition onto the legacy catalog best
// effort.
type Service struct {
	ledger  repository.ReservationRepository
	users   repository.UserDirectory
	catalog repository.CatalogGateway
	sync    *legacysync.Service
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(
	ledger repository.ReservationRepository,
	users repository.UserDirectory,
	catalog repository.CatalogGateway,
	sync *legacysync.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		ledger:  ledger,
		users:   users,
		catalog: catalog,
		sync:    sync,
		logger:  logger,
		metrics: metrics,
	}
}

// CreateReservation runs the full validation chain and commits the
// reservation. Every check short-circuits with a typed error and zero
// ledger writes; once the insert succeeds nothing after it can fail the
// call.
func (s *Service) CreateReservation(ctx context.Context, userID uuid.UUID, item model.ItemRef, pickupDate string) (*model.ReservationDTO, error) {
	timer := prometheus.NewTimer(s.metrics.ReservationLatency)
	defer timer.ObserveDuration()

	if !item.IsPhysical() {
		return nil, s.reject("non_physical",
			apperrors.Validation("Apenas itens físicos podem ser reservados por este caminho."))
	}
	if item.LegacyID <= 0 {
		return nil, s.reject("bad_item_ref",
			apperrors.Validation("Referência de item inválida."))
	}
	pickup, err := time.ParseInLocation(pickupDateLayout, pickupDate, time.Local)
	if err != nil {
		return nil, s.reject("bad_pickup_date",
			apperrors.Validation("Data de retirada inválida. Use o formato AAAA-MM-DD."))
	}

	block, err := s.users.BlockState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve block state: %w", err)
	}
	if block.ActiveAt(time.Now()) {
		return nil, s.reject("blocked",
			apperrors.Forbidden(fmt.Sprintf(
				"Conta bloqueada até %s. Procure a biblioteca pessoalmente para regularizar.",
				block.BlockedUntil.Format(pickupDateLayout))).
				WithDetail("blocked_until", block.BlockedUntil))
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		// Should not happen once auth succeeded upstream.
		return nil, s.reject("user_not_found",
			apperrors.NotFound("Usuário não encontrado."))
	}

	copyRef, err := s.catalog.FindByID(ctx, item.LegacyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve legacy item: %w", err)
	}
	if copyRef == nil {
		return nil, s.reject("item_not_found",
			apperrors.NotFound("Item não encontrado no acervo."))
	}
	if copyRef.Barcode == "" {
		return nil, s.reject("no_physical_copy",
			apperrors.Validation("Este item não possui exemplar físico para reserva."))
	}
	if copyRef.Availability != model.CopyAvailable {
		return nil, s.reject("unavailable",
			apperrors.Validation(fmt.Sprintf(
				"Item indisponível para reserva: exemplar %s.", copyRef.HumanStatus())).
				WithDetail("current_status", copyRef.HumanStatus()))
	}

	existing, err := s.ledger.FindActiveByItem(ctx, item.LegacyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active reservations: %w", err)
	}
	if existing != nil {
		return nil, s.reject("item_conflict",
			apperrors.Conflict("Já existe uma reserva ativa para este item."))
	}

	mine, err := s.ledger.FindActiveByUserAndItem(ctx, userID, item.LegacyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user's reservations: %w", err)
	}
	if mine != nil {
		return nil, s.reject("user_conflict",
			apperrors.Conflict("Você já possui uma reserva ativa para este item."))
	}

	res := &model.Reservation{
		UserID:       userID,
		LegacyItemID: item.LegacyID,
		Barcode:      copyRef.Barcode,
		Title:        copyRef.Title,
		Origin:       model.ReservationOriginPhysical,
		Status:       model.ReservationStatusActive,
		PickupDate:   pickup,
	}
	if err := s.ledger.Create(ctx, res); err != nil {
		// The unique index on active reservations is the backstop for
		// two requests interleaving past the checks above.
		if err == repository.ErrDuplicateActive {
			return nil, s.reject("item_conflict",
				apperrors.Conflict("Já existe uma reserva ativa para este item."))
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	s.metrics.ReservationsCreated.Inc()

	result := s.sync.MarkHold(ctx, item.LegacyID, copyRef.Barcode)
	if !result.Applied {
		s.logger.Warn("reservation committed but legacy mirror not updated",
			"reservation_id", res.ID.String())
	}

	return &model.ReservationDTO{
		Reservation:    *res,
		UserName:       user.Name,
		UserEmail:      user.Email,
		UserIdentifier: user.Identifier,
	}, nil
}

// Transition drives attend/cancel/complete. The affected count follows
// the ledger update: zero means the reservation was not found.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target model.ReservationStatus) (*model.Reservation, error) {
	res, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if res == nil {
		return nil, apperrors.NotFound("Reserva não encontrada.")
	}
	if !res.CanTransitionTo(target) {
		return nil, apperrors.Validation(fmt.Sprintf(
			"Transição de %s para %s não é permitida.", res.Status, target))
	}

	var attendedAt *time.Time
	if target == model.ReservationStatusFulfilled {
		now := time.Now()
		attendedAt = &now
	}

	affected, err := s.ledger.UpdateStatus(ctx, id, target, attendedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	if affected == 0 {
		return nil, apperrors.NotFound("Reserva não encontrada.")
	}

	res.Status = target
	res.AttendedAt = attendedAt

	result := s.sync.MarkForStatus(ctx, res.LegacyItemID, res.Barcode, target)
	if result.Err != nil {
		s.logger.Warn("status transition committed but legacy mirror not updated",
			"reservation_id", res.ID.String(),
			"status", string(target))
	}

	return res, nil
}

// Renew extends the due-back date by one renewal increment without
// changing status. A reservation never renewed seeds from pickup date
// plus one increment.
func (s *Service) Renew(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	if res == nil {
		return nil, apperrors.NotFound("Reserva não encontrada.")
	}
	if res.Status != model.ReservationStatusFulfilled {
		return nil, apperrors.Validation("Apenas reservas atendidas podem ser renovadas.")
	}

	var dueBack time.Time
	if res.DueBack == nil {
		dueBack = res.PickupDate.Add(model.RenewalIncrement)
	} else {
		dueBack = res.DueBack.Add(model.RenewalIncrement)
	}

	affected, err := s.ledger.UpdateDueBack(ctx, id, dueBack)
	if err != nil {
		return nil, fmt.Errorf("failed to renew reservation: %w", err)
	}
	if affected == 0 {
		return nil, apperrors.NotFound("Reserva não encontrada.")
	}

	res.DueBack = &dueBack
	return res, nil
}

// ListForUser returns the caller's reservations, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Reservation, error) {
	return s.ledger.List(ctx, &model.ReservationFilters{UserID: &userID})
}

// List returns reservations for the back office, optionally filtered by
// status.
func (s *Service) List(ctx context.Context, status model.ReservationStatus) ([]*model.Reservation, error) {
	return s.ledger.List(ctx, &model.ReservationFilters{Status: status})
}

func (s *Service) reject(reason string, err *apperrors.AppError) error {
	s.metrics.ReservationsRejected.WithLabelValues(reason).Inc()
	return err
}
