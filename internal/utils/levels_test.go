package utils

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

func TestGetLevelByCoins(t *testing.T) {
	tests := []struct {
		coins int
		want  model.Level
	}{
		{0, model.LevelStarter},
		{4999, model.LevelStarter},
		{5000, model.LevelIntermediate},
		{9999, model.LevelIntermediate},
		{10000, model.LevelGold},
		{34999, model.LevelGold},
		{35000, model.LevelPro},
		{100000, model.LevelPro},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetLevelByCoins(tt.coins), "coins=%d", tt.coins)
	}
}

func TestGetLevelByCoinsIdempotent(t *testing.T) {
	// Reclasser un seeder déjà au bon niveau ne change rien
	level := GetLevelByCoins(7200)
	assert.Equal(t, level, GetLevelByCoins(7200))
	assert.Equal(t, model.LevelIntermediate, level)
}

func TestLevelPriorityOrdering(t *testing.T) {
	assert.Less(t, LevelPriority(model.LevelPro), LevelPriority(model.LevelGold))
	assert.Less(t, LevelPriority(model.LevelGold), LevelPriority(model.LevelIntermediate))
	assert.Less(t, LevelPriority(model.LevelIntermediate), LevelPriority(model.LevelStarter))
	// Niveau inconnu traité comme Starter
	assert.Equal(t, LevelPriority(model.LevelStarter), LevelPriority(model.Level("Unknown")))
}

func TestHasActiveSubscription(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 1, 0)

	active := &model.Seeder{
		SubscriptionStart: sql.NullTime{Time: start, Valid: true},
		SubscriptionEnd:   sql.NullTime{Time: end, Valid: true},
	}
	assert.True(t, HasActiveSubscription(active, now))

	expired := &model.Seeder{
		SubscriptionStart: sql.NullTime{Time: start.AddDate(-1, 0, 0), Valid: true},
		SubscriptionEnd:   sql.NullTime{Time: now.AddDate(0, 0, -1), Valid: true},
	}
	assert.False(t, HasActiveSubscription(expired, now))

	missing := &model.Seeder{
		SubscriptionStart: sql.NullTime{Time: start, Valid: true},
	}
	assert.False(t, HasActiveSubscription(missing, now))

	none := &model.Seeder{}
	assert.False(t, HasActiveSubscription(none, now))
}

func TestHasActiveSubscriptionBoundaries(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	s := &model.Seeder{
		SubscriptionStart: sql.NullTime{Time: start, Valid: true},
		SubscriptionEnd:   sql.NullTime{Time: end, Valid: true},
	}

	// Bornes incluses
	assert.True(t, HasActiveSubscription(s, start))
	assert.True(t, HasActiveSubscription(s, end))
	assert.False(t, HasActiveSubscription(s, start.Add(-time.Second)))
	assert.False(t, HasActiveSubscription(s, end.Add(time.Second)))
}

func TestCalculateLevelProgress(t *testing.T) {
	p := CalculateLevelProgress(7500)
	assert.Equal(t, model.LevelIntermediate, p.CurrentLevel)
	assert.Equal(t, model.LevelGold, *p.NextLevel)
	assert.Equal(t, 2500, p.CoinsToNextLevel)
	assert.InDelta(t, 50.0, p.ProgressPercentage, 0.01)

	pro := CalculateLevelProgress(50000)
	assert.Equal(t, model.LevelPro, pro.CurrentLevel)
	assert.Nil(t, pro.NextLevel)
	assert.Equal(t, 100.0, pro.ProgressPercentage)
	assert.Equal(t, 0, pro.CoinsToNextLevel)
}
