package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// XPEvent records an immutable ledger entry for every XP mutation. Applied may
// differ from Delta when a boost doubled the gain or the clamp at zero bit.
type XPEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Delta     int            `gorm:"column:delta;not null"`
	Applied   int            `gorm:"column:applied;not null"`
	Reason    enums.XPReason `gorm:"type:text;not null"`
	RefID     *uuid.UUID     `gorm:"column:ref_id;type:uuid"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}
