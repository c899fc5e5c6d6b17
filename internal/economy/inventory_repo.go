package economy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath/academy-backend/pkg/db/models"
)

// InventoryRepository exposes persistence helpers for user inventories.
type InventoryRepository interface {
	WithTx(tx *gorm.DB) InventoryRepository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
	Find(ctx context.Context, userID, artifactID uuid.UUID) (*models.InventoryItem, error)
	// AddOne increments the owned quantity, inserting the row on first
	// acquisition. The user+artifact unique index makes this a merge.
	AddOne(ctx context.Context, userID, artifactID uuid.UUID) error
	// RemoveOne decrements the owned quantity and deletes the row when the
	// last unit goes. Returns false when the user owns none.
	RemoveOne(ctx context.Context, userID, artifactID uuid.UUID) (bool, error)
}

type inventoryRepositoryImpl struct {
	db *gorm.DB
}

// NewInventoryRepository returns an inventory repository bound to the provided database.
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepositoryImpl{db: db}
}

func (r *inventoryRepositoryImpl) WithTx(tx *gorm.DB) InventoryRepository {
	if tx == nil {
		return r
	}
	return &inventoryRepositoryImpl{db: tx}
}

func (r *inventoryRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Artifact").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepositoryImpl) Find(ctx context.Context, userID, artifactID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Artifact").
		Where("user_id = ? AND artifact_id = ?", userID, artifactID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepositoryImpl) AddOne(ctx context.Context, userID, artifactID uuid.UUID) error {
	item := models.InventoryItem{
		ID:         uuid.New(),
		UserID:     userID,
		ArtifactID: artifactID,
		Quantity:   1,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "artifact_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("inventory_items.quantity + 1")}),
		}).
		Create(&item).Error
}

func (r *inventoryRepositoryImpl) RemoveOne(ctx context.Context, userID, artifactID uuid.UUID) (bool, error) {
	decremented := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("user_id = ? AND artifact_id = ? AND quantity > 0", userID, artifactID).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if decremented.Error != nil {
		return false, decremented.Error
	}
	if decremented.RowsAffected == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND artifact_id = ? AND quantity <= 0", userID, artifactID).
		Delete(&models.InventoryItem{}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
