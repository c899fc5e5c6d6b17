package challenges

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

// Service carries challenge counters.
type Service interface {
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	// RecordAction adds one to the user's counter. Reaching the target
	// completes the challenge and pays the reward once; calls after
	// completion change nothing.
	RecordAction(ctx context.Context, userID, challengeID uuid.UUID) (*ActionResult, error)
}

// ActionResult describes what a recorded action changed.
type ActionResult struct {
	Count       int                 `json:"count"`
	Target      int                 `json:"target"`
	Completed   bool                `json:"completed"`
	JustDone    bool                `json:"just_done"`
	Progression *progression.Result `json:"progression,omitempty"`
}

// ServiceParams configure the challenges service.
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

// NewService wires challenges dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "challenges repository required")
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

func (s *service) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	challenges, err := s.repo.ListChallenges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list challenges")
	}
	return challenges, nil
}

func (s *service) RecordAction(ctx context.Context, userID, challengeID uuid.UUID) (*ActionResult, error) {
	if userID == uuid.Nil || challengeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and challenge ids required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	challenge, err := s.repo.FindChallenge(ctx, challengeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
	}
	if challenge == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
	}

	outcome := &ActionResult{Target: challenge.TargetCount}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		progress, err := repo.FindProgress(ctx, userID, challengeID)
		if err != nil {
			return err
		}
		if progress == nil {
			progress = &models.ChallengeProgress{
				ID:          uuid.New(),
				UserID:      userID,
				ChallengeID: challengeID,
			}
			if err := repo.CreateProgress(ctx, progress); err != nil {
				return err
			}
		}

		if progress.Completed {
			outcome.Count = progress.Count
			outcome.Completed = true
			return nil
		}

		count := progress.Count + 1
		done := count >= challenge.TargetCount
		fields := map[string]any{"count": count}
		if done {
			fields["completed"] = true
			fields["completed_at"] = s.now().UTC()
		}
		if err := repo.UpdateProgressFields(ctx, progress.ID, fields); err != nil {
			return err
		}

		outcome.Count = count
		outcome.Completed = done
		outcome.JustDone = done
		if !done {
			return nil
		}

		if challenge.XPReward > 0 {
			refID := challenge.ID
			result, err := s.granter.Apply(ctx, tx, user, challenge.XPReward, enums.XPReasonChallengeReward, &refID)
			if err != nil {
				return err
			}
			outcome.Progression = &result
		}
		return s.noteRepo.WithTx(tx).Create(ctx,
			notifications.NewChallengeCompleted(userID, challenge.Title, challenge.XPReward))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist challenge action")
	}

	if outcome.JustDone {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id":      userID,
			"challenge_id": challengeID,
		})
		s.logg.Info(logCtx, "challenge completed")
	}
	return outcome, nil
}
