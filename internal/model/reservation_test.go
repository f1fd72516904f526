package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{"active to fulfilled", ReservationStatusActive, ReservationStatusFulfilled, true},
		{"active to cancelled", ReservationStatusActive, ReservationStatusCancelled, true},
		{"active to completed", ReservationStatusActive, ReservationStatusCompleted, false},
		{"fulfilled to completed", ReservationStatusFulfilled, ReservationStatusCompleted, true},
		{"fulfilled to cancelled", ReservationStatusFulfilled, ReservationStatusCancelled, false},
		{"completed is terminal", ReservationStatusCompleted, ReservationStatusActive, false},
		{"cancelled is terminal", ReservationStatusCancelled, ReservationStatusFulfilled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &Reservation{Status: tt.from}
			assert.Equal(t, tt.allowed, res.CanTransitionTo(tt.to))
		})
	}
}

func TestItemRefIsPhysical(t *testing.T) {
	assert.True(t, ItemRef{Kind: "physical", LegacyID: 42}.IsPhysical())
	assert.False(t, ItemRef{Kind: "digital", ItemID: "abc"}.IsPhysical())
}
