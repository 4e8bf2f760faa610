package datasource

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/events"
	"github.com/dom/leaderboard-dashboard/internal/metrics"
	"github.com/dom/leaderboard-dashboard/internal/querycache"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Publisher receives a notice after every successful mutation.
type Publisher interface {
	Publish(ctx context.Context, change events.Change) error
}

type Options struct {
	Cache    *querycache.Cache
	Bus      Publisher
	Tracer   trace.Tracer
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	PageSize int
}

// Source is the store adapter every reader and writer goes through. Reads
// are memoized in the query cache; each successful write invalidates exactly
// the keys whose results it changed before returning.
type Source struct {
	repos    *repository.Repositories
	cache    *querycache.Cache
	bus      Publisher
	tracer   trace.Tracer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	pageSize int
	policy   *bluemonday.Policy
}

func New(repos *repository.Repositories, opts Options) *Source {
	s := &Source{
		repos:    repos,
		cache:    opts.Cache,
		bus:      opts.Bus,
		tracer:   opts.Tracer,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		pageSize: opts.PageSize,
		policy:   bluemonday.StrictPolicy(),
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("datasource")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.cache == nil {
		s.cache = querycache.New(querycache.NewMemoryStore(), 0, s.logger, s.metrics)
	}
	if s.pageSize <= 0 {
		s.pageSize = 10
	}
	return s
}

func (s *Source) PageSize() int {
	return s.pageSize
}

func (s *Source) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "datasource."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// changed invalidates the affected keys and announces the change. It runs
// only after the store has confirmed the write.
func (s *Source) changed(ctx context.Context, op events.Op, count int64, keys []string, prefixes ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Error("cache invalidation failed", "component", "datasource", "keys", keys, "error", err)
	}
	for _, prefix := range prefixes {
		if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			s.logger.Error("cache invalidation failed", "component", "datasource", "prefix", prefix, "error", err)
		}
	}

	if s.bus == nil {
		return
	}
	all := append(append([]string{}, keys...), prefixes...)
	if err := s.bus.Publish(ctx, events.Change{Op: op, Keys: all, Count: count}); err != nil {
		s.logger.Error("publish change failed", "component", "datasource", "op", op, "error", err)
	}
}

// entryChanged covers every key derived from the entries table.
func (s *Source) entryChanged(ctx context.Context, op events.Op, count int64) {
	s.changed(ctx, op, count,
		[]string{querycache.KeyEntries},
		querycache.RecentPrefix(), querycache.KeyBookmarksPrefix)
}

func (s *Source) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

func (s *Source) normalize(f domain.EntryFields) domain.EntryFields {
	f.AISystem = s.clean(f.AISystem)
	f.Organization = s.clean(f.Organization)
	f.SystemType = s.clean(f.SystemType)
	if f.CodePaperLink != nil {
		link := strings.TrimSpace(*f.CodePaperLink)
		if link == "" {
			f.CodePaperLink = nil
		} else {
			f.CodePaperLink = &link
		}
	}
	return f
}

func (s *Source) prepare(records []domain.EntryFields) ([]*domain.Entry, error) {
	entries := make([]*domain.Entry, 0, len(records))
	for i, record := range records {
		record = s.normalize(record)
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		entries = append(entries, domain.NewEntry(record))
	}
	return entries, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
