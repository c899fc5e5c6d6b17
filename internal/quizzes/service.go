package quizzes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/access"
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

// Service carries quiz attempts and history.
type Service interface {
	ListQuizzes(ctx context.Context, role enums.UserRole) ([]models.Quiz, error)
	// SubmitAttempt records a scored try. Best score only rises, attempts
	// always increment, and the reward fires only on the not-passed to
	// passed transition, so retaking a passed quiz never pays twice.
	SubmitAttempt(ctx context.Context, userID, quizID uuid.UUID, score int) (*AttemptResult, error)
}

// AttemptResult describes what a quiz attempt changed.
type AttemptResult struct {
	Passed      bool                `json:"passed"`
	FirstPass   bool                `json:"first_pass"`
	BestScore   int                 `json:"best_score"`
	Attempts    int                 `json:"attempts"`
	Progression *progression.Result `json:"progression,omitempty"`
}

// ServiceParams configure the quizzes service.
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

// NewService wires quizzes dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quizzes repository required")
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

func (s *service) ListQuizzes(ctx context.Context, role enums.UserRole) ([]models.Quiz, error) {
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quizzes")
	}

	visible := make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if access.CanView(role, quiz.Tier, false) {
			visible = append(visible, quiz)
		}
	}
	return visible, nil
}

func (s *service) SubmitAttempt(ctx context.Context, userID, quizID uuid.UUID, score int) (*AttemptResult, error) {
	if userID == uuid.Nil || quizID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and quiz ids required")
	}
	if score < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score must not be negative")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	quiz, err := s.repo.FindQuiz(ctx, quizID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quiz")
	}
	if quiz == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quiz not found")
	}
	if !access.CanView(user.Role, quiz.Tier, false) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quiz requires a higher tier")
	}

	outcome := &AttemptResult{}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindRecord(ctx, userID, quizID)
		if err != nil {
			return err
		}
		if record == nil {
			record = &models.QuizAttemptRecord{
				ID:     uuid.New(),
				UserID: userID,
				QuizID: quizID,
			}
			if err := repo.CreateRecord(ctx, record); err != nil {
				return err
			}
		}

		attemptedAt := s.now().UTC()
		best := record.BestScore
		if score > best {
			best = score
		}
		passedNow := score >= quiz.PassScore
		firstPass := passedNow && !record.Passed

		fields := map[string]any{
			"best_score":      best,
			"attempts":        record.Attempts + 1,
			"last_attempt_at": attemptedAt,
		}
		if firstPass {
			fields["passed"] = true
		}
		if err := repo.UpdateRecordFields(ctx, record.ID, fields); err != nil {
			return err
		}

		outcome.Passed = record.Passed || passedNow
		outcome.FirstPass = firstPass
		outcome.BestScore = best
		outcome.Attempts = record.Attempts + 1

		if !firstPass {
			return nil
		}

		if quiz.XPReward > 0 {
			refID := quiz.ID
			result, err := s.granter.Apply(ctx, tx, user, quiz.XPReward, enums.XPReasonQuizReward, &refID)
			if err != nil {
				return err
			}
			outcome.Progression = &result
		}
		return s.noteRepo.WithTx(tx).Create(ctx,
			notifications.NewQuizPassed(userID, quiz.Title, quiz.XPReward))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quiz attempt")
	}

	if outcome.FirstPass {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id": userID,
			"quiz_id": quizID,
			"score":   score,
		})
		s.logg.Info(logCtx, "quiz passed")
	}
	return outcome, nil
}
