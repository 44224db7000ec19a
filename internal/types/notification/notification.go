package notification

import (
	"time"

	"github.com/google/uuid"
)

type DeviceToken struct {
	Token    string    `json:"token"`
	Platform string    `json:"platform"`
	AddedAt  time.Time `json:"added_at"`
	LastUsed time.Time `json:"last_used"`
}

type NotificationPreferences struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	PushEnabled  bool            `json:"push_enabled" db:"push_enabled"`
	EnabledTypes map[string]bool `json:"enabled_types" db:"enabled_types"`
	DeviceTokens []DeviceToken   `json:"device_tokens" db:"device_tokens"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

type UpdatePreferencesRequest struct {
	PushEnabled  *bool           `json:"push_enabled,omitempty"`
	EnabledTypes map[string]bool `json:"enabled_types,omitempty"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}
