package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sortableColumns = map[string]bool{
	"ai_system":     true,
	"organization":  true,
	"system_type":   true,
	"arc_agi_1":     true,
	"arc_agi_2":     true,
	"cost_per_task": true,
	"created_at":    true,
}

type entryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *entryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) List(ctx context.Context, opts repository.EntryListOptions) ([]*domain.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Entry{})
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("ai_system ILIKE ? OR organization ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := opts.OrderBy
	if !sortableColumns[column] {
		column = "created_at"
	}
	direction := "ASC NULLS FIRST"
	if opts.Descending {
		direction = "DESC NULLS LAST"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, direction)).Order("id ASC")

	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var entries []*domain.Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *entryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	var entry domain.Entry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// CreateMany inserts the whole batch in a single statement.
func (r *entryRepository) CreateMany(ctx context.Context, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

func (r *entryRepository) Update(ctx context.Context, id uuid.UUID, fields domain.EntryFields) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("id = ?", id).
		Updates(fields.Columns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func (r *entryRepository) UpsertMany(ctx context.Context, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ai_system", "organization", "system_type",
			"arc_agi_1", "arc_agi_2", "cost_per_task", "code_paper_link", "updated_at",
		}),
	}).Create(entries).Error
}

// DeleteByIDs removes every listed entry in one statement and reports how many existed.
func (r *entryRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&domain.Entry{}, "id IN ?", ids)
	return result.RowsAffected, result.Error
}

func (r *entryRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Entry{})
	return result.RowsAffected, result.Error
}
