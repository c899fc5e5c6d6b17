package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem holds a user's owned quantity of an artifact. Consuming the
// last unit deletes the row; a purchase of an owned artifact increments it.
type InventoryItem struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_user_artifact"`
	ArtifactID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_user_artifact"`
	Quantity   int       `gorm:"column:quantity;not null;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Artifact *Artifact `gorm:"foreignKey:ArtifactID"`
}
