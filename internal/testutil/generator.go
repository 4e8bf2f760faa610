package testutil

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
)

var systemTypes = []string{"CoT", "CoT + Synthesis", "Base LLM", "Custom", "N/A"}

// EntryGenerator produces reproducible leaderboard data from a seed.
type EntryGenerator struct {
	faker *gofakeit.Faker
}

func NewEntryGenerator(seed uint64) *EntryGenerator {
	return &EntryGenerator{faker: gofakeit.New(seed)}
}

func (g *EntryGenerator) Fields() domain.EntryFields {
	f := domain.EntryFields{
		AISystem:     fmt.Sprintf("%s %d", g.faker.AppName(), g.faker.Number(1, 9)),
		Organization: g.faker.Company(),
		SystemType:   g.faker.RandomString(systemTypes),
	}
	if g.faker.Number(0, 4) > 0 {
		f.ARCAGI1 = g.score(100)
	}
	if g.faker.Number(0, 2) > 0 {
		f.ARCAGI2 = g.score(30)
	}
	if g.faker.Bool() {
		f.CostPerTask = g.score(20)
	}
	if g.faker.Bool() {
		f.CodePaperLink = domain.String(g.faker.URL())
	}
	return f
}

// Entries returns n stored-looking entries with ids and timestamps.
func (g *EntryGenerator) Entries(n int) []*domain.Entry {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Entry, n)
	for i := range out {
		e := domain.NewEntry(g.Fields())
		e.ID = uuid.New()
		e.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		e.UpdatedAt = e.CreatedAt
		out[i] = e
	}
	return out
}

func (g *EntryGenerator) score(max float64) *float64 {
	v := float64(int(g.faker.Float64Range(0, max)*10)) / 10
	return &v
}
