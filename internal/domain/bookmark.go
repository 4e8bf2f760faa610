package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultBookmarkCategory = "General"

// Bookmark is a user-owned pointer to an entry with a free-text category.
type Bookmark struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	ModelID      uuid.UUID `json:"modelId" gorm:"type:uuid;not null"`
	Model        *Entry    `json:"model,omitempty" gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE"`
	CategoryName *string   `json:"categoryName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ModelSelection is a user's private entry, shaped like a leaderboard entry.
type ModelSelection struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	AISystem     string    `json:"ai_system" gorm:"not null"`
	Organization string    `json:"organization" gorm:"not null"`
	SystemType   string    `json:"system_type"`
	ARCAGI1      *float64  `json:"arc_agi_1"`
	ARCAGI2      *float64  `json:"arc_agi_2"`
	CostPerTask  *float64  `json:"cost_per_task"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ModelSelection) TableName() string {
	return "user_model_selections"
}
