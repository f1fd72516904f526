package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEventKeysAreDeterministicPerDay(t *testing.T) {
	id := uuid.New()
	morning := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)
	evening := time.Date(2025, 1, 10, 23, 30, 0, 0, time.Local)
	nextDay := time.Date(2025, 1, 11, 8, 0, 0, 0, time.Local)

	assert.Equal(t, DueTodayKey(id, morning), DueTodayKey(id, evening))
	assert.NotEqual(t, DueTodayKey(id, morning), DueTodayKey(id, nextDay))
	assert.NotEqual(t, DueTodayKey(id, morning), OverdueKey(id, morning))
}
