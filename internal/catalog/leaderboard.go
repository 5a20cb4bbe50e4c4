package catalog

import (
	"slices"
	"strings"

	"github.com/claude/athletconnect/internal/models"
)

// RankLeaderboard filters athletes by sport and region and orders them by
// summed test percentiles, highest first. Sport must match exactly; region
// is matched as a substring of the location. Empty filters and AllSports /
// AllRegions match everything. Ties keep their input order.
func RankLeaderboard(athletes []models.Athlete, sport, region string) []models.Athlete {
	out := make([]models.Athlete, 0, len(athletes))
	for _, a := range athletes {
		if sport != "" && sport != AllSports && a.Sport != sport {
			continue
		}
		if region != "" && region != AllRegions && !strings.Contains(a.Location, region) {
			continue
		}
		out = append(out, a)
	}
	slices.SortStableFunc(out, func(a, b models.Athlete) int {
		at, bt := a.PercentileTotal(), b.PercentileTotal()
		switch {
		case at > bt:
			return -1
		case at < bt:
			return 1
		}
		return 0
	})
	return out
}
