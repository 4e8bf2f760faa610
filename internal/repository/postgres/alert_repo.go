package postgres

import (
	"context"
	"errors"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *alertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *domain.UserAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserAlert, error) {
	var alerts []*domain.UserAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&domain.UserAlert{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *categoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.ModelCategory, error) {
	var categories []*domain.ModelCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) UpsertByName(ctx context.Context, categories []*domain.ModelCategory) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description"}),
	}).Create(categories).Error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *subscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.NewsletterSubscription, error) {
	var subs []*domain.NewsletterSubscription
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Toggle subscribes the user to a category, or flips an existing subscription.
func (r *subscriptionRepository) Toggle(ctx context.Context, userID, categoryID uuid.UUID) (*domain.NewsletterSubscription, error) {
	var sub domain.NewsletterSubscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sub, "user_id = ? AND category_id = ?", userID, categoryID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub = domain.NewsletterSubscription{UserID: userID, CategoryID: categoryID, IsActive: true}
			return tx.Create(&sub).Error
		}
		if err != nil {
			return err
		}
		sub.IsActive = !sub.IsActive
		return tx.Model(&sub).Update("is_active", sub.IsActive).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
