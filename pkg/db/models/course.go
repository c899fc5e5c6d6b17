package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// Course is a reward-bearing content unit made of ordered lessons.
type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text;not null;default:''"`
	Tier        enums.UserRole `gorm:"type:text;not null;default:'student'"`
	// Open marks student-tier content viewable without an active plan.
	Open      bool      `gorm:"column:open;not null;default:false"`
	XPReward  int       `gorm:"column:xp_reward;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Lessons []Lesson `gorm:"foreignKey:CourseID"`
}

// Lesson is a single content step inside a course.
type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title    string    `gorm:"type:text;not null"`
	Position int       `gorm:"column:position;not null"`
}
