package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Origin of a reservation. Digital items are reserved through a different
// surface; this service only ever writes "physical".
const ReservationOriginPhysical = "physical"

// RenewalIncrement is how far each renewal pushes the due-back date.
const RenewalIncrement = 7 * 24 * time.Hour

// Reservation is a user's claim on one physical catalog copy. Title and
// barcode are captured at creation time so later catalog edits do not
// rewrite history.
type Reservation struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	UserID       uuid.UUID         `db:"user_id" json:"user_id"`
	LegacyItemID int64             `db:"legacy_item_id" json:"legacy_item_id"`
	Barcode      string            `db:"barcode" json:"barcode"`
	Title        string            `db:"title" json:"title"`
	Origin       string            `db:"origin" json:"origin"`
	Status       ReservationStatus `db:"status" json:"status"`
	PickupDate   time.Time         `db:"pickup_date" json:"pickup_date"`
	AttendedAt   *time.Time        `db:"attended_at" json:"attended_at,omitempty"`
	DueBack      *time.Time        `db:"due_back" json:"due_back,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// CanTransitionTo reports whether the state machine allows moving to the
// target status. Completed and cancelled are terminal.
func (r *Reservation) CanTransitionTo(target ReservationStatus) bool {
	switch r.Status {
	case ReservationStatusActive:
		return target == ReservationStatusFulfilled || target == ReservationStatusCancelled
	case ReservationStatusFulfilled:
		return target == ReservationStatusCompleted
	default:
		return false
	}
}

// ItemRef is the tagged item reference accepted at the API boundary.
// Only physical (legacy catalog) references may be reserved here.
type ItemRef struct {
	Kind     string `json:"kind" binding:"required,oneof=physical digital"`
	LegacyID int64  `json:"legacy_id"`
	ItemID   string `json:"item_id,omitempty"`
}

func (r ItemRef) IsPhysical() bool {
	return r.Kind == "physical"
}

type CreateReservationRequest struct {
	Item       ItemRef `json:"item" binding:"required"`
	PickupDate string  `json:"pickup_date" binding:"required,pickupdate"`
}

// ReservationDTO merges a committed reservation with denormalized user
// contact fields for immediate caller use.
type ReservationDTO struct {
	Reservation
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	UserIdentifier string `json:"user_identifier"`
}

type ReservationFilters struct {
	UserID *uuid.UUID
	Status ReservationStatus
}
