package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// Mentor is a bookable instructor.
type Mentor struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"type:text;not null"`
	Bio       string         `gorm:"type:text;not null;default:''"`
	Tier      enums.UserRole `gorm:"type:text;not null;default:'premium'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// MentoringBooking is a user's session request. IsFree marks bookings that
// consumed one of the role's monthly free slots.
type MentoringBooking struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	MentorID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	ScheduledAt time.Time           `gorm:"column:scheduled_at;not null"`
	Status      enums.BookingStatus `gorm:"type:text;not null;default:'pending'"`
	IsFree      bool                `gorm:"column:is_free;not null;default:false"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
