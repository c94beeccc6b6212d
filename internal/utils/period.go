package utils

import (
	"fmt"
	"time"
)

// RemainingDays retourne le nombre de jours entiers restants avant l'échéance,
// arrondi vers le haut, jamais négatif.
func RemainingDays(deadline, now time.Time) int {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// DateRange retourne la fenêtre [start, end) pour les métriques admin.
// period = "monthly" -> mois courant, "yearly" -> année courante.
func DateRange(period string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case "monthly":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), nil
	case "yearly":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period: %s", period)
	}
}
