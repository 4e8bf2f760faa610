package datasource

import (
	"context"
	"strings"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/events"
	"github.com/dom/leaderboard-dashboard/internal/querycache"
	"github.com/google/uuid"
)

func (s *Source) Bookmarks(ctx context.Context, userID uuid.UUID) (bookmarks []*domain.Bookmark, err error) {
	ctx, span := s.startSpan(ctx, "Bookmarks")
	defer func() { endSpan(span, err) }()

	return querycache.Fetch(ctx, s.cache, querycache.BookmarksKey(userID), func(ctx context.Context) ([]*domain.Bookmark, error) {
		return withRetry(ctx, s, "bookmarks", readRetry, func(ctx context.Context) ([]*domain.Bookmark, error) {
			return s.repos.Bookmark.ListByUser(ctx, userID)
		})
	})
}

// AddBookmark files an entry under a category, "General" when none is given.
func (s *Source) AddBookmark(ctx context.Context, userID, modelID uuid.UUID, category string) (*domain.Bookmark, error) {
	if _, err := s.Entry(ctx, modelID); err != nil {
		return nil, err
	}

	category = s.clean(category)
	if category == "" {
		category = domain.DefaultBookmarkCategory
	}
	bookmark := &domain.Bookmark{UserID: userID, ModelID: modelID, CategoryName: &category}

	_, err := withRetry(ctx, s, "bookmark_create", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Bookmark.Create(ctx, bookmark)
	})
	s.metrics.Mutation("bookmark_create", err)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, events.OpInsert, 1, []string{querycache.BookmarksKey(userID)})
	return bookmark, nil
}

func (s *Source) UpdateBookmarkCategory(ctx context.Context, userID, id uuid.UUID, category string) error {
	var value *string
	if c := s.clean(category); c != "" {
		value = &c
	}

	_, err := withRetry(ctx, s, "bookmark_update", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Bookmark.UpdateCategory(ctx, userID, id, value)
	})
	s.metrics.Mutation("bookmark_update", err)
	if err != nil {
		return err
	}

	s.changed(ctx, events.OpUpdate, 1, []string{querycache.BookmarksKey(userID)})
	return nil
}

func (s *Source) DeleteBookmark(ctx context.Context, userID, id uuid.UUID) error {
	_, err := withRetry(ctx, s, "bookmark_delete", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Bookmark.Delete(ctx, userID, id)
	})
	s.metrics.Mutation("bookmark_delete", err)
	if err != nil {
		return err
	}

	s.changed(ctx, events.OpDelete, 1, []string{querycache.BookmarksKey(userID)})
	return nil
}

func (s *Source) Selections(ctx context.Context, userID uuid.UUID) (selections []*domain.ModelSelection, err error) {
	ctx, span := s.startSpan(ctx, "Selections")
	defer func() { endSpan(span, err) }()

	return querycache.Fetch(ctx, s.cache, querycache.SelectionsKey(userID), func(ctx context.Context) ([]*domain.ModelSelection, error) {
		return withRetry(ctx, s, "selections", readRetry, func(ctx context.Context) ([]*domain.ModelSelection, error) {
			return s.repos.Selection.ListByUser(ctx, userID)
		})
	})
}

func (s *Source) AddSelection(ctx context.Context, userID uuid.UUID, fields domain.EntryFields) (*domain.ModelSelection, error) {
	fields = s.normalize(fields)
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fields.SystemType) == "" {
		fields.SystemType = domain.DefaultSystemType
	}

	selection := &domain.ModelSelection{
		UserID:       userID,
		AISystem:     fields.AISystem,
		Organization: fields.Organization,
		SystemType:   fields.SystemType,
		ARCAGI1:      fields.ARCAGI1,
		ARCAGI2:      fields.ARCAGI2,
		CostPerTask:  fields.CostPerTask,
	}

	_, err := withRetry(ctx, s, "selection_create", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Selection.Create(ctx, selection)
	})
	s.metrics.Mutation("selection_create", err)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, events.OpInsert, 1, []string{querycache.SelectionsKey(userID)})
	return selection, nil
}

func (s *Source) DeleteSelection(ctx context.Context, userID, id uuid.UUID) error {
	_, err := withRetry(ctx, s, "selection_delete", writeRetry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repos.Selection.Delete(ctx, userID, id)
	})
	s.metrics.Mutation("selection_delete", err)
	if err != nil {
		return err
	}

	s.changed(ctx, events.OpDelete, 1, []string{querycache.SelectionsKey(userID)})
	return nil
}
