package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseProgress tracks one user's state within one course. IsCompleted flips
// to true exactly once; the course reward is granted on that transition only.
type CourseProgress struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_course"`
	CourseID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_course"`
	IsCompleted  bool       `gorm:"column:is_completed;not null;default:false"`
	LastLessonID *uuid.UUID `gorm:"column:last_lesson_id;type:uuid"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// LessonCompletion is the completed-lesson set, one row per (user, lesson).
// The unique index makes re-completing a lesson a no-op insert.
type LessonCompletion struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_user_lesson"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LessonID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_user_lesson"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
