package bonuses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/economy"
	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/progression"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service carries bonus tasks, submissions, and payouts.
type Service interface {
	ListTasks(ctx context.Context) ([]models.BonusTask, error)
	Submit(ctx context.Context, userID, taskID uuid.UUID) (*models.BonusSubmission, error)
	// ApproveSubmission is the admin transition pending -> approved.
	ApproveSubmission(ctx context.Context, submissionID uuid.UUID) error
	// ClaimSubmission pays an approved, unclaimed submission. The claimed
	// flag and the XP land in one transaction so the payout cannot double.
	ClaimSubmission(ctx context.Context, userID, taskID uuid.UUID) (*ClaimResult, error)
	ListPendingSubmissions(ctx context.Context) ([]models.BonusSubmission, error)
	CreateTask(ctx context.Context, input TaskInput) (*models.BonusTask, error)
}

// ClaimResult describes a paid-out bonus claim.
type ClaimResult struct {
	Submission  models.BonusSubmission `json:"submission"`
	Progression progression.Result     `json:"progression"`
}

// TaskInput is the admin create payload.
type TaskInput struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	XPReward int    `json:"xp_reward" validate:"gt=0"`
}

// ServiceParams configure the bonuses service.
type ServiceParams struct {
	Logger           *logger.Logger
	DB               txRunner
	Repo             Repository
	UserRepo         users.Repository
	NotificationRepo notifications.Repository
	Granter          economy.Granter
	Now              func() time.Time
}

type service struct {
	logg     *logger.Logger
	db       txRunner
	repo     Repository
	userRepo users.Repository
	noteRepo notifications.Repository
	granter  economy.Granter
	now      func() time.Time
}

// NewService wires bonuses dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "bonuses repository required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Granter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "granter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repo,
		userRepo: params.UserRepo,
		noteRepo: params.NotificationRepo,
		granter:  params.Granter,
		now:      now,
	}, nil
}

func (s *service) ListTasks(ctx context.Context) ([]models.BonusTask, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bonus tasks")
	}
	return tasks, nil
}

func (s *service) Submit(ctx context.Context, userID, taskID uuid.UUID) (*models.BonusSubmission, error) {
	if userID == uuid.Nil || taskID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and task ids required")
	}

	task, err := s.repo.FindTask(ctx, taskID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bonus task")
	}
	if task == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bonus task not found")
	}

	existing, err := s.repo.FindUserSubmission(ctx, userID, taskID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}
	if existing != nil && existing.Status != enums.SubmissionStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "submission already exists for this task")
	}

	submission := &models.BonusSubmission{
		ID:     uuid.New(),
		TaskID: taskID,
		UserID: userID,
		Status: enums.SubmissionStatusPending,
	}
	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist submission")
	}
	return submission, nil
}

func (s *service) ApproveSubmission(ctx context.Context, submissionID uuid.UUID) error {
	if submissionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission id required")
	}

	submission, err := s.repo.FindSubmission(ctx, submissionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}
	if submission == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
	}
	if submission.Status != enums.SubmissionStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "submission is not pending")
	}

	fields := map[string]any{"status": enums.SubmissionStatusApproved}
	if err := s.repo.UpdateSubmissionFields(ctx, submission.ID, fields); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist approval")
	}
	return nil
}

func (s *service) ClaimSubmission(ctx context.Context, userID, taskID uuid.UUID) (*ClaimResult, error) {
	if userID == uuid.Nil || taskID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and task ids required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	task, err := s.repo.FindTask(ctx, taskID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bonus task")
	}
	if task == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bonus task not found")
	}

	submission, err := s.repo.FindUserSubmission(ctx, userID, taskID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}
	if submission == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no submission for this task")
	}
	if submission.Status != enums.SubmissionStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "submission is not approved")
	}
	if submission.Claimed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "bonus already claimed")
	}

	outcome := &ClaimResult{}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		claimedAt := s.now().UTC()
		flipped, err := s.repo.WithTx(tx).MarkClaimed(ctx, submission.ID, map[string]any{
			"claimed":    true,
			"claimed_at": claimedAt,
		})
		if err != nil {
			return err
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bonus already claimed")
		}
		submission.Claimed = true
		submission.ClaimedAt = &claimedAt

		refID := task.ID
		result, err := s.granter.Apply(ctx, tx, user, task.XPReward, enums.XPReasonBonusClaim, &refID)
		if err != nil {
			return err
		}
		outcome.Progression = result

		return s.noteRepo.WithTx(tx).Create(ctx,
			notifications.NewBonusClaimed(userID, task.Title, task.XPReward))
	})
	if err != nil {
		if pkgErr := pkgerrors.As(err); pkgErr != nil {
			return nil, pkgErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist bonus claim")
	}

	outcome.Submission = *submission
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id": userID,
		"task_id": taskID,
		"xp":      task.XPReward,
	})
	s.logg.Info(logCtx, "bonus claimed")
	return outcome, nil
}

func (s *service) ListPendingSubmissions(ctx context.Context) ([]models.BonusSubmission, error) {
	submissions, err := s.repo.ListPendingSubmissions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
	}
	return submissions, nil
}

func (s *service) CreateTask(ctx context.Context, input TaskInput) (*models.BonusTask, error) {
	if input.XPReward <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "xp reward must be positive")
	}
	task := &models.BonusTask{
		ID:       uuid.New(),
		Title:    input.Title,
		XPReward: input.XPReward,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bonus task")
	}
	return task, nil
}
