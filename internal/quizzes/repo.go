package quizzes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/pkg/db/models"
)

// Repository exposes persistence helpers for quizzes and attempt history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)
	FindQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	FindRecord(ctx context.Context, userID, quizID uuid.UUID) (*models.QuizAttemptRecord, error)
	CreateRecord(ctx context.Context, record *models.QuizAttemptRecord) error
	UpdateRecordFields(ctx context.Context, recordID uuid.UUID, fields map[string]any) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a quizzes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *repositoryImpl) FindQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).First(&quiz, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *repositoryImpl) FindRecord(ctx context.Context, userID, quizID uuid.UUID) (*models.QuizAttemptRecord, error) {
	var record models.QuizAttemptRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repositoryImpl) CreateRecord(ctx context.Context, record *models.QuizAttemptRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repositoryImpl) UpdateRecordFields(ctx context.Context, recordID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.QuizAttemptRecord{}).
		Where("id = ?", recordID).
		Updates(fields).Error
}
