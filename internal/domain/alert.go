package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserAlert is a message sent by an admin to a single user.
type UserAlert struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AdminID   uuid.UUID `json:"adminId" gorm:"type:uuid;not null"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	IsRead    bool      `json:"isRead" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

type ModelCategory struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewsletterSubscription struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID      `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_subscription_user_category"`
	CategoryID uuid.UUID      `json:"categoryId" gorm:"type:uuid;not null;uniqueIndex:idx_subscription_user_category"`
	Category   *ModelCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	IsActive   bool           `json:"isActive" gorm:"not null;default:true"`
	CreatedAt  time.Time      `json:"createdAt"`
}
