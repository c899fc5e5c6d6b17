package economy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

// ArtifactRepository exposes persistence helpers for shop artifacts.
type ArtifactRepository interface {
	WithTx(tx *gorm.DB) ArtifactRepository
	Create(ctx context.Context, artifact *models.Artifact) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Artifact, error)
	List(ctx context.Context) ([]models.Artifact, error)
	// ListLootPool returns the artifacts a loot box may award. Boxes never
	// drop other boxes.
	ListLootPool(ctx context.Context) ([]models.Artifact, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type artifactRepositoryImpl struct {
	db *gorm.DB
}

// NewArtifactRepository returns an artifact repository bound to the provided database.
func NewArtifactRepository(db *gorm.DB) ArtifactRepository {
	return &artifactRepositoryImpl{db: db}
}

func (r *artifactRepositoryImpl) WithTx(tx *gorm.DB) ArtifactRepository {
	if tx == nil {
		return r
	}
	return &artifactRepositoryImpl{db: tx}
}

func (r *artifactRepositoryImpl) Create(ctx context.Context, artifact *models.Artifact) error {
	return r.db.WithContext(ctx).Create(artifact).Error
}

func (r *artifactRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Artifact, error) {
	var artifact models.Artifact
	err := r.db.WithContext(ctx).First(&artifact, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (r *artifactRepositoryImpl) List(ctx context.Context) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	if err := r.db.WithContext(ctx).Order("price ASC, name ASC").Find(&artifacts).Error; err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *artifactRepositoryImpl) ListLootPool(ctx context.Context) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	err := r.db.WithContext(ctx).
		Where("effect <> ?", enums.ArtifactEffectLootBox).
		Order("name ASC").
		Find(&artifacts).Error
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *artifactRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Artifact{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *artifactRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Artifact{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
