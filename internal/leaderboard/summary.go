package leaderboard

import (
	"math"

	"github.com/dom/leaderboard-dashboard/internal/domain"
)

// Summary is the headline statistics shown above the admin tables.
type Summary struct {
	TotalModels    int     `json:"totalModels"`
	AverageARCAGI1 float64 `json:"averageArcAgi1"`
	Organizations  int     `json:"organizations"`
}

// Summarize averages arc_agi_1 over every entry, counting a missing score as
// zero, and rounds to one decimal place.
func Summarize(entries []*domain.Entry) Summary {
	var total float64
	orgs := make(map[string]struct{})
	n := 0
	for _, e := range entries {
		if e == nil {
			continue
		}
		n++
		if e.ARCAGI1 != nil {
			total += *e.ARCAGI1
		}
		orgs[e.Organization] = struct{}{}
	}

	s := Summary{TotalModels: n, Organizations: len(orgs)}
	if n > 0 {
		s.AverageARCAGI1 = math.Round(total/float64(n)*10) / 10
	}
	return s
}

// Top returns the first n entries of the projection for sort. A
// non-positive n returns the whole projection.
func Top(entries []*domain.Entry, sort Sort, n int) []Ranked {
	ranked := Project(entries, Query{Sort: sort})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
