package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// CalendarEvent is a scheduled community event with an optional XP reward on
// approved attendance.
type CalendarEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string         `gorm:"type:text;not null"`
	Tier      enums.UserRole `gorm:"type:text;not null;default:'student'"`
	StartsAt  time.Time      `gorm:"column:starts_at;not null"`
	XPReward  int            `gorm:"column:xp_reward;not null;default:0"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// EventRegistration tracks one user's registration on one event. Approval is
// an explicit admin action.
type EventRegistration struct {
	ID         uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID    uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_registration_event_user"`
	UserID     uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_registration_event_user"`
	Status     enums.RegistrationStatus `gorm:"type:text;not null;default:'registered'"`
	ApprovedAt *time.Time               `gorm:"column:approved_at"`
	CreatedAt  time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
