package utils

import (
	"time"

	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

// LevelConfig définit les paliers de pièces et la priorité de classement.
// Priorité 1 = niveau le plus fort (trié en premier à abonnement égal).
var LevelConfig = map[model.Level]model.LevelInfo{
	model.LevelStarter:      {MinCoins: 0, MaxCoins: 5000, Priority: 4},
	model.LevelIntermediate: {MinCoins: 5000, MaxCoins: 10000, Priority: 3},
	model.LevelGold:         {MinCoins: 10000, MaxCoins: 35000, Priority: 2},
	model.LevelPro:          {MinCoins: 35000, MaxCoins: -1, Priority: 1},
}

// GetLevelByCoins retourne le niveau correspondant au solde de pièces.
// Les bornes hautes sont exclusives, 5000 pièces = Intermediate.
func GetLevelByCoins(coins int) model.Level {
	switch {
	case coins >= 35000:
		return model.LevelPro
	case coins >= 10000:
		return model.LevelGold
	case coins >= 5000:
		return model.LevelIntermediate
	default:
		return model.LevelStarter
	}
}

// LevelPriority retourne la priorité de tri d'un niveau (Starter par défaut)
func LevelPriority(level model.Level) int {
	if info, ok := LevelConfig[level]; ok {
		return info.Priority
	}
	return LevelConfig[model.LevelStarter].Priority
}

// HasActiveSubscription vérifie que l'instant courant est dans la fenêtre
// d'abonnement. Une borne manquante = pas d'abonnement actif.
func HasActiveSubscription(s *model.Seeder, now time.Time) bool {
	if !s.SubscriptionStart.Valid || !s.SubscriptionEnd.Valid {
		return false
	}
	return !now.Before(s.SubscriptionStart.Time) && !now.After(s.SubscriptionEnd.Time)
}

// NextLevel retourne le palier suivant, nil pour Pro
func NextLevel(level model.Level) *model.Level {
	var next model.Level
	switch level {
	case model.LevelStarter:
		next = model.LevelIntermediate
	case model.LevelIntermediate:
		next = model.LevelGold
	case model.LevelGold:
		next = model.LevelPro
	default:
		return nil
	}
	return &next
}

// CalculateLevelProgress calcule la progression vers le palier suivant
func CalculateLevelProgress(coins int) model.LevelProgress {
	level := GetLevelByCoins(coins)
	info := LevelConfig[level]

	progress := model.LevelProgress{
		CurrentLevel: level,
		NextLevel:    NextLevel(level),
		CurrentCoins: coins,
	}

	if info.MaxCoins < 0 {
		// Pro n'a pas de palier suivant
		progress.ProgressPercentage = 100
		return progress
	}

	span := info.MaxCoins - info.MinCoins
	if span > 0 {
		progress.ProgressPercentage = float64(coins-info.MinCoins) * 100 / float64(span)
	}
	progress.CoinsToNextLevel = info.MaxCoins - coins
	return progress
}
