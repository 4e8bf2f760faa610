package datasource

import (
	"context"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/events"
	"github.com/dom/leaderboard-dashboard/internal/querycache"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Page is one page of the admin's recent-entries listing.
type Page struct {
	Entries    []*domain.Entry `json:"entries"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	Total      int64           `json:"total"`
}

// Entries returns every entry, best arc_agi_1 first.
func (s *Source) Entries(ctx context.Context) (entries []*domain.Entry, err error) {
	ctx, span := s.startSpan(ctx, "Entries")
	defer func() { endSpan(span, err) }()

	return querycache.Fetch(ctx, s.cache, querycache.KeyEntries, func(ctx context.Context) ([]*domain.Entry, error) {
		return withRetry(ctx, s, "entries", readRetry, func(ctx context.Context) ([]*domain.Entry, error) {
			list, _, err := s.repos.Entry.List(ctx, repository.EntryListOptions{
				OrderBy:    "arc_agi_1",
				Descending: true,
			})
			return list, err
		})
	})
}

// RecentEntries pages through entries newest first. Pages start at 1.
func (s *Source) RecentEntries(ctx context.Context, page int) (result *Page, err error) {
	if page < 1 {
		page = 1
	}
	ctx, span := s.startSpan(ctx, "RecentEntries", attribute.Int("page", page))
	defer func() { endSpan(span, err) }()

	return querycache.Fetch(ctx, s.cache, querycache.RecentKey(page), func(ctx context.Context) (*Page, error) {
		return withRetry(ctx, s, "recent_entries", readRetry, func(ctx context.Context) (*Page, error) {
			list, total, err := s.repos.Entry.List(ctx, repository.EntryListOptions{
				OrderBy:    "created_at",
				Descending: true,
				Offset:     (page - 1) * s.pageSize,
				Limit:      s.pageSize,
			})
			if err != nil {
				return nil, err
			}
			return &Page{
				Entries:    list,
				Page:       page,
				TotalPages: int((total + int64(s.pageSize) - 1) / int64(s.pageSize)),
				Total:      total,
			}, nil
		})
	})
}

func (s *Source) Entry(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	return withRetry(ctx, s, "entry", readRetry, func(ctx context.Context) (*domain.Entry, error) {
		return s.repos.Entry.GetByID(ctx, id)
	})
}

// InsertEntries validates the whole batch, then inserts it in one call.
// An empty batch is a no-op.
func (s *Source) InsertEntries(ctx context.Context, records []domain.EntryFields) (n int, err error) {
	ctx, span := s.startSpan(ctx, "InsertEntries", attribute.Int("count", len(records)))
	defer func() { endSpan(span, err) }()

	if len(records) == 0 {
		return 0, nil
	}
	entries, err := s.prepare(records)
	if err != nil {
		return 0, err
	}

	_, err = withRetry(ctx, s, "insert", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Entry.CreateMany(ctx, entries)
	})
	s.metrics.Mutation("insert", err)
	if err != nil {
		return 0, err
	}

	s.entryChanged(ctx, events.OpInsert, int64(len(entries)))
	return len(entries), nil
}

func (s *Source) UpdateEntry(ctx context.Context, id uuid.UUID, fields domain.EntryFields) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateEntry", attribute.String("id", id.String()))
	defer func() { endSpan(span, err) }()

	fields = s.normalize(fields)
	if err := fields.Validate(); err != nil {
		return err
	}

	_, err = withRetry(ctx, s, "update", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Entry.Update(ctx, id, fields)
	})
	s.metrics.Mutation("update", err)
	if err != nil {
		return err
	}

	s.entryChanged(ctx, events.OpUpdate, 1)
	return nil
}

// DeleteEntries removes the given ids in one store call and reports how many
// rows were removed.
func (s *Source) DeleteEntries(ctx context.Context, ids []uuid.UUID) (n int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteEntries", attribute.StringSlice("ids", idStrings(ids)))
	defer func() { endSpan(span, err) }()

	if len(ids) == 0 {
		return 0, nil
	}

	n, err = withRetry(ctx, s, "delete", writeRetry, func(ctx context.Context) (int64, error) {
		return s.repos.Entry.DeleteByIDs(ctx, ids)
	})
	s.metrics.Mutation("delete", err)
	if err != nil {
		return 0, err
	}

	s.entryChanged(ctx, events.OpDelete, n)
	return n, nil
}

func (s *Source) ClearEntries(ctx context.Context) (n int64, err error) {
	ctx, span := s.startSpan(ctx, "ClearEntries")
	defer func() { endSpan(span, err) }()

	n, err = withRetry(ctx, s, "clear", writeRetry, func(ctx context.Context) (int64, error) {
		return s.repos.Entry.DeleteAll(ctx)
	})
	s.metrics.Mutation("clear", err)
	if err != nil {
		return 0, err
	}

	s.entryChanged(ctx, events.OpClear, n)
	return n, nil
}

// UpsertEntries writes entries keyed by id, inserting or replacing each.
func (s *Source) UpsertEntries(ctx context.Context, entries []*domain.Entry) (n int, err error) {
	ctx, span := s.startSpan(ctx, "UpsertEntries", attribute.Int("count", len(entries)))
	defer func() { endSpan(span, err) }()

	if len(entries) == 0 {
		return 0, nil
	}
	prepared := make([]*domain.Entry, len(entries))
	for i, entry := range entries {
		fields := s.normalize(entry.Fields())
		if err := fields.Validate(); err != nil {
			return 0, err
		}
		p := domain.NewEntry(fields)
		p.ID = entry.ID
		prepared[i] = p
	}

	_, err = withRetry(ctx, s, "upsert", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Entry.UpsertMany(ctx, prepared)
	})
	s.metrics.Mutation("upsert", err)
	if err != nil {
		return 0, err
	}

	s.entryChanged(ctx, events.OpUpsert, int64(len(prepared)))
	return len(prepared), nil
}
