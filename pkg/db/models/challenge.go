package models

import (
	"time"

	"github.com/google/uuid"
)

// Challenge rewards repeating an action TargetCount times.
type Challenge struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"type:text;not null"`
	TargetCount int       `gorm:"column:target_count;not null"`
	XPReward    int       `gorm:"column:xp_reward;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ChallengeProgress is the per-user counter. Once Completed, further action
// calls are no-ops.
type ChallengeProgress struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user"`
	ChallengeID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user"`
	Count       int        `gorm:"column:count;not null;default:0"`
	Completed   bool       `gorm:"column:completed;not null;default:false"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
