package legacysync

import (
	"context"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/repository"
	"github.com/unilib/portal-api/pkg/logger"
	"github.com/unilib/portal-api/pkg/metrics"
)

// SyncResult tells the caller what happened to the advisory mirror write.
// The ledger is the source of truth; a failed mirror write is logged by
// the caller, never propagated.
type SyncResult struct {
	Applied    bool
	StatusCode string
	Err        error
}

// Service mirrors reservation-state transitions onto the legacy
// catalog's per-copy status column, best effort.
type Service struct {
	catalog repository.CatalogGateway
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(catalog repository.CatalogGateway, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}
}

// MarkHold flags the copy as held after a reservation is created.
func (s *Service) MarkHold(ctx context.Context, legacyItemID int64, barcode string) SyncResult {
	return s.apply(ctx, legacyItemID, barcode, model.LegacyCodeReservedHold)
}

// MarkForStatus mirrors a ledger status transition: fulfilled means the
// copy left the building, cancelled/completed puts it back on the shelf.
// Statuses with no legacy equivalent are a no-op.
func (s *Service) MarkForStatus(ctx context.Context, legacyItemID int64, barcode string, status model.ReservationStatus) SyncResult {
	var code string
	switch status {
	case model.ReservationStatusFulfilled:
		code = model.LegacyCodeLoaned
	case model.ReservationStatusCancelled, model.ReservationStatusCompleted:
		code = model.LegacyCodeAvailable
	default:
		return SyncResult{Applied: false}
	}
	return s.apply(ctx, legacyItemID, barcode, code)
}

func (s *Service) apply(ctx context.Context, legacyItemID int64, barcode, code string) SyncResult {
	err := s.catalog.UpdateCopyStatus(ctx, legacyItemID, barcode, code)
	if err != nil {
		s.metrics.LegacySyncResults.WithLabelValues("failed").Inc()
		s.logger.Error(err, "legacy status sync failed",
			"legacy_item_id", legacyItemID,
			"status_code", code)
		return SyncResult{Applied: false, StatusCode: code, Err: err}
	}

	s.metrics.LegacySyncResults.WithLabelValues("applied").Inc()
	return SyncResult{Applied: true, StatusCode: code}
}
