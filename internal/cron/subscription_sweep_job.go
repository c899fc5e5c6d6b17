package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/subscription"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/logger"
)

const (
	defaultSweepLimit   = 250
	defaultSweepHorizon = 8 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubscriptionSweepJobParams configure the plan-expiry sweep.
type SubscriptionSweepJobParams struct {
	Logger       *logger.Logger
	UserRepo     users.Repository
	Subscription subscription.Service
	Limit        int
	Horizon      time.Duration
	Now          func() time.Time
}

// NewSubscriptionSweepJob builds the job that applies expiry demotions and
// renewal warnings server-side, so gating never waits for the user to show up.
func NewSubscriptionSweepJob(params SubscriptionSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Subscription == nil {
		return nil, fmt.Errorf("subscription service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	horizon := params.Horizon
	if horizon <= 0 {
		horizon = defaultSweepHorizon
	}
	return &subscriptionSweepJob{
		logg:         params.Logger,
		userRepo:     params.UserRepo,
		subscription: params.Subscription,
		limit:        limit,
		horizon:      horizon,
		now:          now,
	}, nil
}

type subscriptionSweepJob struct {
	logg         *logger.Logger
	userRepo     users.Repository
	subscription subscription.Service
	limit        int
	horizon      time.Duration
	now          func() time.Time
}

func (j *subscriptionSweepJob) Name() string { return "subscription-sweep" }

func (j *subscriptionSweepJob) Run(ctx context.Context) error {
	horizon := j.now().UTC().Add(j.horizon)
	candidates, err := j.userRepo.ListWithExpiringPlans(ctx, horizon, j.limit)
	if err != nil {
		return fmt.Errorf("list expiring plans: %w", err)
	}

	var errs error
	expired := 0
	warned := 0
	for i := range candidates {
		assessment, err := j.sweepUser(ctx, &candidates[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if assessment.ShouldExpire {
			expired++
		}
		if assessment.ShouldWarn {
			warned++
		}
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(candidates),
		"expired":    expired,
		"warned":     warned,
	})
	j.logg.Info(reportCtx, "subscription sweep complete")
	return errs
}

func (j *subscriptionSweepJob) sweepUser(ctx context.Context, user *models.User) (*subscription.Assessment, error) {
	assessment, err := j.subscription.Reconcile(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("reconcile user %s: %w", user.ID, err)
	}
	return assessment, nil
}
