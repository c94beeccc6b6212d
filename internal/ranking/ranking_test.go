package ranking

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func seeder(id string, coin int, level model.Level, subscribed bool) model.RankedSeeder {
	s := model.RankedSeeder{}
	s.ID = id
	s.Coin = coin
	s.Level = level
	if subscribed {
		s.SubscriptionStart = sql.NullTime{Time: now.AddDate(0, -1, 0), Valid: true}
		s.SubscriptionEnd = sql.NullTime{Time: now.AddDate(0, 1, 0), Valid: true}
	}
	return s
}

func ids(ranked []model.RankedSeeder) []string {
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.ID
	}
	return out
}

func TestRankSubscriptionBeatsCoins(t *testing.T) {
	// B est abonné: il passe devant A malgré un solde bien plus faible
	ranked := Rank([]model.RankedSeeder{
		seeder("A", 40000, model.LevelPro, false),
		seeder("B", 100, model.LevelStarter, true),
	}, now)

	assert.Equal(t, []string{"B", "A"}, ids(ranked))
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestRankLevelPriorityBreaksSubscriptionTie(t *testing.T) {
	ranked := Rank([]model.RankedSeeder{
		seeder("starter", 4000, model.LevelStarter, true),
		seeder("gold", 12000, model.LevelGold, true),
		seeder("pro", 40000, model.LevelPro, true),
	}, now)

	assert.Equal(t, []string{"pro", "gold", "starter"}, ids(ranked))
}

func TestRankCoinsBreakLevelTie(t *testing.T) {
	ranked := Rank([]model.RankedSeeder{
		seeder("poor", 11000, model.LevelGold, false),
		seeder("rich", 30000, model.LevelGold, false),
	}, now)

	assert.Equal(t, []string{"rich", "poor"}, ids(ranked))
}

func TestRankStableOnFullTie(t *testing.T) {
	// Tuple identique: l'ordre d'entrée est conservé
	ranked := Rank([]model.RankedSeeder{
		seeder("first", 6000, model.LevelIntermediate, false),
		seeder("second", 6000, model.LevelIntermediate, false),
		seeder("third", 6000, model.LevelIntermediate, false),
	}, now)

	assert.Equal(t, []string{"first", "second", "third"}, ids(ranked))
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
}

func TestRankExpiredSubscriptionIgnored(t *testing.T) {
	expired := seeder("expired", 500, model.LevelStarter, false)
	expired.SubscriptionStart = sql.NullTime{Time: now.AddDate(-1, 0, 0), Valid: true}
	expired.SubscriptionEnd = sql.NullTime{Time: now.AddDate(0, 0, -1), Valid: true}

	ranked := Rank([]model.RankedSeeder{
		expired,
		seeder("plain", 9000, model.LevelIntermediate, false),
	}, now)

	assert.Equal(t, []string{"plain", "expired"}, ids(ranked))
	assert.False(t, ranked[1].HasActiveSubscription)
}

func TestRankFillsLevelInfo(t *testing.T) {
	ranked := Rank([]model.RankedSeeder{
		seeder("g", 12000, model.LevelGold, false),
	}, now)

	assert.Equal(t, 10000, ranked[0].LevelInfo.MinCoins)
	assert.Equal(t, 35000, ranked[0].LevelInfo.MaxCoins)
	assert.Equal(t, 2, ranked[0].LevelInfo.Priority)
}

func TestRankOf(t *testing.T) {
	ranked := Rank([]model.RankedSeeder{
		seeder("A", 40000, model.LevelPro, false),
		seeder("B", 100, model.LevelStarter, true),
		seeder("C", 8000, model.LevelIntermediate, false),
	}, now)

	assert.Equal(t, 1, RankOf(ranked, "B"))
	assert.Equal(t, 2, RankOf(ranked, "A"))
	assert.Equal(t, 3, RankOf(ranked, "C"))
	assert.Equal(t, 0, RankOf(ranked, "missing"))
}

func TestRankEmpty(t *testing.T) {
	ranked := Rank(nil, now)
	assert.Empty(t, ranked)
}
