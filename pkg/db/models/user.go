package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// User is the central progression aggregate. XP doubles as both score and
// spendable currency; Level is always derived from XP against the level table.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	Name         string         `gorm:"type:text;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"type:text;not null;default:'nope'"`

	XP           int        `gorm:"column:xp;not null;default:0"`
	Level        int        `gorm:"column:level;not null;default:1"`
	XPBoostUntil *time.Time `gorm:"column:xp_boost_until"`

	PlanExpires      *time.Time `gorm:"column:plan_expires"`
	NotifiedExpiring bool       `gorm:"column:notified_expiring;not null;default:false"`

	// LastDailyClaim holds a calendar date (2006-01-02); claims compare by
	// day identity, never by time of day.
	LastDailyClaim *string `gorm:"column:last_daily_claim;type:text"`

	IsBanned   bool       `gorm:"column:is_banned;not null;default:false"`
	MutedUntil *time.Time `gorm:"column:muted_until"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
