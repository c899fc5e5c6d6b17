package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// Quiz is a reward-bearing assessment. PassScore is the minimum score that
// counts as passing.
type Quiz struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string         `gorm:"type:text;not null"`
	Tier      enums.UserRole `gorm:"type:text;not null;default:'student'"`
	PassScore int            `gorm:"column:pass_score;not null"`
	XPReward  int            `gorm:"column:xp_reward;not null;default:0"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// QuizAttemptRecord is the per-user quiz history entry. BestScore only ever
// rises, Passed flips to true once and stays true, Attempts counts every try.
type QuizAttemptRecord struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_history_user_quiz"`
	QuizID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_history_user_quiz"`
	BestScore     int        `gorm:"column:best_score;not null;default:0"`
	Passed        bool       `gorm:"column:passed;not null;default:false"`
	Attempts      int        `gorm:"column:attempts;not null;default:0"`
	LastAttemptAt *time.Time `gorm:"column:last_attempt_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
