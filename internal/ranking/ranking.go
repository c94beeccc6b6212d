// Package ranking ordonne les seeders du leaderboard.
// L'ordre est un tuple: abonnement actif d'abord, puis priorité de niveau,
// puis solde de pièces décroissant. Le tri est stable, les égalités gardent
// l'ordre d'entrée.
package ranking

import (
	"sort"
	"time"

	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

// Less compare deux seeders classés selon le tuple de classement
func Less(a, b *model.RankedSeeder) bool {
	if a.HasActiveSubscription != b.HasActiveSubscription {
		return a.HasActiveSubscription
	}
	if a.LevelPriority != b.LevelPriority {
		return a.LevelPriority < b.LevelPriority
	}
	return a.Coin > b.Coin
}

// Rank enrichit chaque seeder de ses métadonnées de classement et trie la
// liste. Les rangs sont attribués à partir de 1, sans ex aequo.
func Rank(seeders []model.RankedSeeder, now time.Time) []model.RankedSeeder {
	for i := range seeders {
		s := &seeders[i]
		s.HasActiveSubscription = utils.HasActiveSubscription(&s.Seeder, now)
		s.LevelPriority = utils.LevelPriority(s.Level)
		s.LevelInfo = utils.LevelConfig[utils.GetLevelByCoins(s.Coin)]
	}

	sort.SliceStable(seeders, func(i, j int) bool {
		return Less(&seeders[i], &seeders[j])
	})

	for i := range seeders {
		seeders[i].Rank = i + 1
	}
	return seeders
}

// RankOf retourne le rang d'un seeder dans une liste déjà classée, 0 si absent
func RankOf(ranked []model.RankedSeeder, seederID string) int {
	for _, s := range ranked {
		if s.ID == seederID {
			return s.Rank
		}
	}
	return 0
}
