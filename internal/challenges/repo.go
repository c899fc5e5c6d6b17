package challenges

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/pkg/db/models"
)

// Repository exposes persistence helpers for challenges and per-user counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	FindChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	FindProgress(ctx context.Context, userID, challengeID uuid.UUID) (*models.ChallengeProgress, error)
	CreateProgress(ctx context.Context, progress *models.ChallengeProgress) error
	UpdateProgressFields(ctx context.Context, progressID uuid.UUID, fields map[string]any) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a challenges repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *repositoryImpl) FindChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *repositoryImpl) FindProgress(ctx context.Context, userID, challengeID uuid.UUID) (*models.ChallengeProgress, error) {
	var progress models.ChallengeProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *repositoryImpl) CreateProgress(ctx context.Context, progress *models.ChallengeProgress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

func (r *repositoryImpl) UpdateProgressFields(ctx context.Context, progressID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ChallengeProgress{}).
		Where("id = ?", progressID).
		Updates(fields).Error
}
