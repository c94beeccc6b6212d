package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// 2 jours et demi -> arrondi à 3
	assert.Equal(t, 3, RemainingDays(now.Add(60*time.Hour), now))
	// Exactement 2 jours
	assert.Equal(t, 2, RemainingDays(now.Add(48*time.Hour), now))
	// Moins d'un jour -> 1
	assert.Equal(t, 1, RemainingDays(now.Add(time.Hour), now))
	// Échéance passée -> 0, jamais négatif
	assert.Equal(t, 0, RemainingDays(now.Add(-time.Hour), now))
	assert.Equal(t, 0, RemainingDays(now, now))
}

func TestDateRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := DateRange("monthly", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), end)

	start, end, err = DateRange("yearly", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = DateRange("weekly", now)
	assert.Error(t, err)
}
