package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// BonusTask is an admin-published side quest with an XP payout.
type BonusTask struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	XPReward  int       `gorm:"column:xp_reward;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BonusSubmission is a user's entry for a bonus task. Claimed flips in the
// same transaction that grants the XP so the payout can never double.
type BonusSubmission struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TaskID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Status    enums.SubmissionStatus `gorm:"type:text;not null;default:'pending'"`
	Claimed   bool                   `gorm:"column:claimed;not null;default:false"`
	ClaimedAt *time.Time             `gorm:"column:claimed_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
