package postgres

import (
	"context"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *bookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Create(ctx context.Context, bookmark *domain.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Bookmark, error) {
	var bookmarks []*domain.Bookmark
	err := r.db.WithContext(ctx).
		Preload("Model").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (r *bookmarkRepository) UpdateCategory(ctx context.Context, userID, id uuid.UUID, category *string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Bookmark{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("category_name", category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookmarkNotFound
	}
	return nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Bookmark{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookmarkNotFound
	}
	return nil
}

type selectionRepository struct {
	db *gorm.DB
}

func NewSelectionRepository(db *gorm.DB) *selectionRepository {
	return &selectionRepository{db: db}
}

func (r *selectionRepository) Create(ctx context.Context, selection *domain.ModelSelection) error {
	return r.db.WithContext(ctx).Create(selection).Error
}

func (r *selectionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ModelSelection, error) {
	var selections []*domain.ModelSelection
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&selections).Error
	if err != nil {
		return nil, err
	}
	return selections, nil
}

func (r *selectionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.ModelSelection{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
