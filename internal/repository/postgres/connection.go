package postgres

import (
	"context"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultCategories are seeded on every start so subscriptions have targets.
func DefaultCategories() []*domain.ModelCategory {
	return []*domain.ModelCategory{
		{Name: "Reasoning", Description: domain.String("Chain-of-thought and program-synthesis systems")},
		{Name: "Base LLM", Description: domain.String("General purpose language models without test-time search")},
		{Name: "Open Source", Description: domain.String("Systems with public weights or code")},
		{Name: "Cost Efficient", Description: domain.String("Systems with a low cost per task")},
	}
}

func NewConnection(databaseURL string, production bool) (*gorm.DB, error) {
	level := logger.Info
	if production {
		level = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table the dashboard uses and seeds categories.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Entry{},
		&domain.User{},
		&domain.UserSession{},
		&domain.APIKey{},
		&domain.APIUsageLog{},
		&domain.Bookmark{},
		&domain.ModelSelection{},
		&domain.UserAlert{},
		&domain.ModelCategory{},
		&domain.NewsletterSubscription{},
	)
	if err != nil {
		return err
	}

	return NewCategoryRepository(db).UpsertByName(context.Background(), DefaultCategories())
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Entry:        NewEntryRepository(db),
		User:         NewUserRepository(db),
		Session:      NewSessionRepository(db),
		APIKey:       NewAPIKeyRepository(db),
		Bookmark:     NewBookmarkRepository(db),
		Selection:    NewSelectionRepository(db),
		Alert:        NewAlertRepository(db),
		Category:     NewCategoryRepository(db),
		Subscription: NewSubscriptionRepository(db),
	}
}
