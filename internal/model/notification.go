package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventItemDueToday  EventType = "item-due-today"
	EventItemOverdue   EventType = "item-overdue"
	EventItemAvailable EventType = "item-available"
)

// NotificationEvent is an ephemeral value pushed through the notification
// bus. The key deterministically identifies one logical occurrence so
// sinks can suppress duplicates.
type NotificationEvent struct {
	Type          EventType `json:"type"`
	Key           string    `json:"key"`
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	Title         string    `json:"title"`
	Email         string    `json:"email"`
	DueBack       time.Time `json:"due_back"`
	DaysOverdue   int       `json:"days_overdue,omitempty"`

	// NotificationID is filled by the persistence sink once the row
	// exists, so downstream sinks can update its sent flag.
	NotificationID uuid.UUID `json:"-"`
}

// DueTodayKey builds the idempotency key for a due-today event on a
// given calendar day.
func DueTodayKey(reservationID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("due:%s:%s", reservationID, day.Format("2006-01-02"))
}

// OverdueKey builds the idempotency key for an overdue event on a given
// calendar day.
func OverdueKey(reservationID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("overdue:%s:%s", reservationID, day.Format("2006-01-02"))
}

// Notification is the persisted row the persistence sink writes for the
// user-visible notification feed.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      EventType `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Payload   string    `db:"payload" json:"payload"`
	Sent      bool      `db:"sent" json:"sent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationLogEntry is the idempotency marker: one row per unique
// event key, never updated or deleted.
type NotificationLogEntry struct {
	EventKey  string    `db:"event_key" json:"event_key"`
	Payload   string    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SweepSummary is returned by an overdue sweep run.
type SweepSummary struct {
	DueCount     int `json:"due_count"`
	OverdueCount int `json:"overdue_count"`
}
