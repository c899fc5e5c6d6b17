package bonuses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

// Repository exposes persistence helpers for bonus tasks and submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListTasks(ctx context.Context) ([]models.BonusTask, error)
	FindTask(ctx context.Context, id uuid.UUID) (*models.BonusTask, error)
	CreateTask(ctx context.Context, task *models.BonusTask) error

	CreateSubmission(ctx context.Context, submission *models.BonusSubmission) error
	FindSubmission(ctx context.Context, id uuid.UUID) (*models.BonusSubmission, error)
	FindUserSubmission(ctx context.Context, userID, taskID uuid.UUID) (*models.BonusSubmission, error)
	ListPendingSubmissions(ctx context.Context) ([]models.BonusSubmission, error)
	UpdateSubmissionFields(ctx context.Context, submissionID uuid.UUID, fields map[string]any) error
	// MarkClaimed flips the claimed flag only when it is still unset. The
	// guarded update is what makes the payout once-only under races.
	MarkClaimed(ctx context.Context, submissionID uuid.UUID, fields map[string]any) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a bonuses repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListTasks(ctx context.Context) ([]models.BonusTask, error) {
	var tasks []models.BonusTask
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repositoryImpl) FindTask(ctx context.Context, id uuid.UUID) (*models.BonusTask, error) {
	var task models.BonusTask
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repositoryImpl) CreateTask(ctx context.Context, task *models.BonusTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *repositoryImpl) CreateSubmission(ctx context.Context, submission *models.BonusSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *repositoryImpl) FindSubmission(ctx context.Context, id uuid.UUID) (*models.BonusSubmission, error) {
	var submission models.BonusSubmission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repositoryImpl) FindUserSubmission(ctx context.Context, userID, taskID uuid.UUID) (*models.BonusSubmission, error) {
	var submission models.BonusSubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Order("created_at DESC").
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repositoryImpl) ListPendingSubmissions(ctx context.Context) ([]models.BonusSubmission, error) {
	var submissions []models.BonusSubmission
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SubmissionStatusPending).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *repositoryImpl) UpdateSubmissionFields(ctx context.Context, submissionID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.BonusSubmission{}).
		Where("id = ?", submissionID).
		Updates(fields).Error
}

func (r *repositoryImpl) MarkClaimed(ctx context.Context, submissionID uuid.UUID, fields map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BonusSubmission{}).
		Where("id = ? AND claimed = ?", submissionID, false).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
