package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/repository"
)

// The reservations table carries a generated column
//
//	active_item_key BIGINT AS (IF(status = 'active', legacy_item_id, NULL)) STORED
//
// with a UNIQUE index, so at most one active reservation can exist per
// legacy item no matter how requests interleave. A violated insert comes
// back as MySQL error 1062.
const mysqlErrDuplicateEntry = 1062

func (r *reservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (
			id, user_id, legacy_item_id, barcode, title,
			origin, status, pickup_date, due_back,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.LegacyItemID,
		res.Barcode,
		res.Title,
		res.Origin,
		res.Status,
		res.PickupDate,
		res.DueBack,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return repository.ErrDuplicateActive
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *reservationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `
		SELECT id, user_id, legacy_item_id, barcode, title,
		       origin, status, pickup_date, attended_at, due_back,
		       created_at, updated_at
		FROM reservations
		WHERE id = ?
	`
	var res model.Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &res, nil
}

func (r *reservationRepository) FindActiveByItem(ctx context.Context, legacyItemID int64) (*model.Reservation, error) {
	query := `
		SELECT id, user_id, legacy_item_id, barcode, title,
		       origin, status, pickup_date, attended_at, due_back,
		       created_at, updated_at
		FROM reservations
		WHERE legacy_item_id = ? AND status = ?
		LIMIT 1
	`
	var res model.Reservation
	err := r.db.GetContext(ctx, &res, query, legacyItemID, model.ReservationStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active reservation: %w", err)
	}
	return &res, nil
}

func (r *reservationRepository) FindActiveByUserAndItem(ctx context.Context, userID uuid.UUID, legacyItemID int64) (*model.Reservation, error) {
	query := `
		SELECT id, user_id, legacy_item_id, barcode, title,
		       origin, status, pickup_date, attended_at, due_back,
		       created_at, updated_at
		FROM reservations
		WHERE user_id = ? AND legacy_item_id = ? AND status = ?
		LIMIT 1
	`
	var res model.Reservation
	err := r.db.GetContext(ctx, &res, query, userID, legacyItemID, model.ReservationStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user's active reservation: %w", err)
	}
	return &res, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus, attendedAt *time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = ?, attended_at = COALESCE(?, attended_at), updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, status, attendedAt, time.Now(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *reservationRepository) UpdateDueBack(ctx context.Context, id uuid.UUID, dueBack time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET due_back = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, dueBack, time.Now(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to update due date: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *reservationRepository) List(ctx context.Context, filters *model.ReservationFilters) ([]*model.Reservation, error) {
	query := `
		SELECT id, user_id, legacy_item_id, barcode, title,
		       origin, status, pickup_date, attended_at, due_back,
		       created_at, updated_at
		FROM reservations
		WHERE 1=1
	`
	args := []interface{}{}

	if filters != nil && filters.UserID != nil {
		query += " AND user_id = ?"
		args = append(args, *filters.UserID)
	}
	if filters != nil && filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at DESC"

	var reservations []*model.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) FindFulfilledDueOn(ctx context.Context, day time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT id, user_id, legacy_item_id, barcode, title,
		       origin, status, pickup_date, attended_at, due_back,
		       created_at, updated_at
		FROM reservations
		WHERE status = ? AND due_back IS NOT NULL AND DATE(due_back) = DATE(?)
	`
	var reservations []*model.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, model.ReservationStatusFulfilled, day)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations due today: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) FindFulfilledDueBefore(ctx context.Context, day time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT id, user_id, legacy_item_id, barcode, title,
		       origin, status, pickup_date, attended_at, due_back,
		       created_at, updated_at
		FROM reservations
		WHERE status = ? AND due_back IS NOT NULL AND DATE(due_back) < DATE(?)
	`
	var reservations []*model.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, model.ReservationStatusFulfilled, day)
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue reservations: %w", err)
	}
	return reservations, nil
}
