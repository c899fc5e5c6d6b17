package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// Artifact is a shop item purchasable with XP.
type Artifact struct {
	ID                  uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string               `gorm:"type:text;not null"`
	Description         string               `gorm:"type:text;not null;default:''"`
	Price               int                  `gorm:"column:price;not null"`
	Effect              enums.ArtifactEffect `gorm:"type:text;not null;default:'none'"`
	EffectDurationHours int                  `gorm:"column:effect_duration_hours;not null;default:0"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
}
