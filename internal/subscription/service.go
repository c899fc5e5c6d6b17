package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies subscription-lifecycle transitions to users.
type Service interface {
	// Status evaluates the user's plan without side effects.
	Status(ctx context.Context, userID uuid.UUID) (*Assessment, error)
	// Reconcile evaluates the user's plan and persists any pending
	// transition: expiry demotes the role to nope and resets the warning
	// flag; the warn window sets the flag. Both append exactly one
	// notification per transition. Safe to call repeatedly.
	Reconcile(ctx context.Context, user *models.User) (*Assessment, error)
}

// ServiceParams configure the subscription service.
type ServiceParams struct {
	Logger           *logger.Logger
	DB               txRunner
	UserRepo         users.Repository
	NotificationRepo notifications.Repository
	WarnWindowDays   int
	Now              func() time.Time
}

type service struct {
	logg           *logger.Logger
	db             txRunner
	userRepo       users.Repository
	noteRepo       notifications.Repository
	warnWindowDays int
	now            func() time.Time
}

// NewService wires subscription dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	warn := params.WarnWindowDays
	if warn <= 0 {
		warn = DefaultWarnWindowDays
	}
	return &service{
		logg:           params.Logger,
		db:             params.DB,
		userRepo:       params.UserRepo,
		noteRepo:       params.NotificationRepo,
		warnWindowDays: warn,
		now:            now,
	}, nil
}

func (s *service) Status(ctx context.Context, userID uuid.UUID) (*Assessment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	assessment := Evaluate(user, s.now(), s.warnWindowDays)
	return &assessment, nil
}

func (s *service) Reconcile(ctx context.Context, user *models.User) (*Assessment, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}

	assessment := Evaluate(user, s.now(), s.warnWindowDays)
	if !assessment.ShouldExpire && !assessment.ShouldWarn {
		return &assessment, nil
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		noteRepo := s.noteRepo.WithTx(tx)

		if assessment.ShouldExpire {
			fields := map[string]any{
				"role":              enums.UserRoleNope,
				"notified_expiring": false,
			}
			if err := userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
				return err
			}
			return noteRepo.Create(ctx, notifications.NewPlanExpired(user.ID))
		}

		if err := userRepo.UpdateFields(ctx, user.ID, map[string]any{"notified_expiring": true}); err != nil {
			return err
		}
		return noteRepo.Create(ctx, notifications.NewPlanWarning(user.ID, assessment.DaysRemaining))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist subscription transition")
	}

	// Keep the in-memory copy in sync for callers holding the aggregate.
	if assessment.ShouldExpire {
		user.Role = enums.UserRoleNope
		user.NotifiedExpiring = false
	} else {
		user.NotifiedExpiring = true
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":        user.ID,
		"expired":        assessment.ShouldExpire,
		"warned":         assessment.ShouldWarn,
		"days_remaining": assessment.DaysRemaining,
	})
	s.logg.Info(logCtx, "subscription transition applied")
	return &assessment, nil
}
