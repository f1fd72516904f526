package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unilib/portal-api/internal/model"
)

func (d *userDirectory) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, email, identifier, created_at
		FROM users
		WHERE id = ?
	`
	var user model.User
	err := d.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (d *userDirectory) FindEmail(ctx context.Context, id uuid.UUID) (string, error) {
	query := `SELECT email FROM users WHERE id = ?`

	var email string
	err := d.db.GetContext(ctx, &email, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user email: %w", err)
	}
	return email, nil
}

// BlockState reads the user's block flag. An expired block is cleared in
// the same call so a stale flag never rejects a reservation.
func (d *userDirectory) BlockState(ctx context.Context, id uuid.UUID) (*model.AccountBlockState, error) {
	query := `SELECT blocked, blocked_until FROM users WHERE id = ?`

	var state model.AccountBlockState
	err := d.db.GetContext(ctx, &state, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.AccountBlockState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read block state: %w", err)
	}

	if state.Blocked && state.BlockedUntil != nil && !state.BlockedUntil.After(time.Now()) {
		clear := `UPDATE users SET blocked = FALSE, blocked_until = NULL WHERE id = ?`
		if _, err := d.db.ExecContext(ctx, clear, id); err != nil {
			return nil, fmt.Errorf("failed to clear expired block: %w", err)
		}
		return &model.AccountBlockState{}, nil
	}

	return &state, nil
}
