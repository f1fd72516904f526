package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/unilib/portal-api/internal/model"
)

// ErrDuplicateActive is returned by ReservationRepository.Create when the
// ledger's exclusivity constraint rejects a second active reservation for
// the same legacy item.
var ErrDuplicateActive = errors.New("active reservation already exists for item")

// All repository interfaces in one file
type (
	// ReservationRepository is the authoritative reservation ledger.
	ReservationRepository interface {
		Create(ctx context.Context, res *model.Reservation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
		FindActiveByItem(ctx context.Context, legacyItemID int64) (*model.Reservation, error)
		FindActiveByUserAndItem(ctx context.Context, userID uuid.UUID, legacyItemID int64) (*model.Reservation, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus, attendedAt *time.Time) (int64, error)
		UpdateDueBack(ctx context.Context, id uuid.UUID, dueBack time.Time) (int64, error)
		List(ctx context.Context, filters *model.ReservationFilters) ([]*model.Reservation, error)
		FindFulfilledDueOn(ctx context.Context, day time.Time) ([]*model.Reservation, error)
		FindFulfilledDueBefore(ctx context.Context, day time.Time) ([]*model.Reservation, error)
	}

	// UserDirectory reads user identity, contact and block state.
	UserDirectory interface {
		FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		FindEmail(ctx context.Context, id uuid.UUID) (string, error)
		BlockState(ctx context.Context, id uuid.UUID) (*model.AccountBlockState, error)
	}

	// CatalogGateway reads the legacy physical catalog and writes its one
	// per-copy status column.
	CatalogGateway interface {
		FindByID(ctx context.Context, legacyItemID int64) (*model.CatalogCopyRef, error)
		UpdateCopyStatus(ctx context.Context, legacyItemID int64, barcode, statusCode string) error
	}

	// NotificationRepository persists notification rows and the
	// idempotency log consumed by the sinks.
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		MarkSent(ctx context.Context, id uuid.UUID) error
		// LogEventKey inserts the idempotency marker; it returns false
		// without error when the key was already present.
		LogEventKey(ctx context.Context, entry *model.NotificationLogEntry) (bool, error)
		HasEventKey(ctx context.Context, eventKey string) (bool, error)
	}
)
