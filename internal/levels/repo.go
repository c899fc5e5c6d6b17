package levels

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/progression"
	"github.com/brightpath/academy-backend/pkg/db/models"
)

// Repository loads the configured level table.
type Repository interface {
	Table(ctx context.Context) (progression.LevelTable, error)
	Replace(ctx context.Context, rows []models.LevelThreshold) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a level table repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Table(ctx context.Context) (progression.LevelTable, error) {
	var rows []models.LevelThreshold
	if err := r.db.WithContext(ctx).Order("level ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return progression.LevelTable(rows), nil
}

// Replace swaps the whole table in one transaction. Used by the admin surface.
func (r *repositoryImpl) Replace(ctx context.Context, rows []models.LevelThreshold) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.LevelThreshold{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
