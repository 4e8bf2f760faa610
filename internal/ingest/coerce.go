package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/dom/leaderboard-dashboard/internal/domain"
)

// Columns is the positional layout shared by every tabular upload format.
var Columns = []string{
	"AI System", "Organization", "System Type",
	"ARC-AGI-1", "ARC-AGI-2", "Cost/Task", "Code / Paper",
}

// percent parses "4.5%" style scores. Anything unparsable is null.
func percent(raw string) *float64 {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	v, ok := finite(s)
	if !ok {
		return nil
	}
	return &v
}

// cost parses "$0.080" style prices. Anything unparsable is zero, unlike
// the score columns.
func cost(raw string) *float64 {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "$")
	v, ok := finite(s)
	if !ok {
		v = 0
	}
	return &v
}

// finite rejects NaN and infinities, which ParseFloat accepts by name.
func finite(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func link(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" || s == domain.NoLinkPlaceholder {
		return nil
	}
	return &s
}

// fromRow maps positional cells to fields. Missing trailing cells are
// treated as empty.
func fromRow(cells []string, defaultType string) domain.EntryFields {
	at := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	systemType := at(2)
	if systemType == "" {
		systemType = defaultType
	}

	return domain.EntryFields{
		AISystem:      at(0),
		Organization:  at(1),
		SystemType:    systemType,
		ARCAGI1:       percent(at(3)),
		ARCAGI2:       percent(at(4)),
		CostPerTask:   cost(at(5)),
		CodePaperLink: link(at(6)),
	}
}
