package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// APIKey grants read access to the public entries endpoint.
type APIKey struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AdminID          uuid.UUID  `json:"adminId" gorm:"type:uuid;not null;index"`
	ClientName       string     `json:"clientName" gorm:"not null"`
	ClientID         string     `json:"clientId" gorm:"uniqueIndex;not null"`
	ClientSecretHash string     `json:"-" gorm:"not null"`
	BearerToken      string     `json:"bearerToken" gorm:"uniqueIndex;not null"`
	IsActive         bool       `json:"isActive" gorm:"not null;default:true"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Usable reports whether the key may authenticate a request at the given time.
func (k *APIKey) Usable(now time.Time) bool {
	if !k.IsActive {
		return false
	}
	return k.ExpiresAt == nil || now.Before(*k.ExpiresAt)
}

type APIUsageLog struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	APIKeyID       uuid.UUID      `json:"apiKeyId" gorm:"type:uuid;not null;index"`
	APIKey         *APIKey        `json:"-" gorm:"foreignKey:APIKeyID;constraint:OnDelete:CASCADE"`
	Endpoint       string         `json:"endpoint" gorm:"not null"`
	Method         string         `json:"method" gorm:"not null"`
	RequestData    datatypes.JSON `json:"requestData" gorm:"type:jsonb"`
	ResponseStatus *int           `json:"responseStatus"`
	CreatedAt      time.Time      `json:"createdAt"`
}
