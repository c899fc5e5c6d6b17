package economy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/levels"
	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/progression"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
)

// Granter is the single path for XP mutations. Every grant or spend runs the
// progression calculator, persists the new totals, appends a ledger entry, and
// emits level-change notifications, all inside the caller's transaction.
type Granter interface {
	Apply(ctx context.Context, tx *gorm.DB, user *models.User, delta int, reason enums.XPReason, refID *uuid.UUID) (progression.Result, error)
}

// GranterParams configure the XP granter.
type GranterParams struct {
	LevelRepo        levels.Repository
	UserRepo         users.Repository
	XPEventRepo      XPEventRepository
	NotificationRepo notifications.Repository
	Now              func() time.Time
}

type granter struct {
	levelRepo levels.Repository
	userRepo  users.Repository
	eventRepo XPEventRepository
	noteRepo  notifications.Repository
	now       func() time.Time
}

// NewGranter wires the XP mutation path.
func NewGranter(params GranterParams) (Granter, error) {
	if params.LevelRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "levels repository required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.XPEventRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "xp events repository required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &granter{
		levelRepo: params.LevelRepo,
		userRepo:  params.UserRepo,
		eventRepo: params.XPEventRepo,
		noteRepo:  params.NotificationRepo,
		now:       now,
	}, nil
}

func (g *granter) Apply(ctx context.Context, tx *gorm.DB, user *models.User, delta int, reason enums.XPReason, refID *uuid.UUID) (progression.Result, error) {
	if user == nil {
		return progression.Result{}, pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}

	table, err := g.levelRepo.Table(ctx)
	if err != nil {
		return progression.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load level table")
	}

	state := progression.State{
		XP:         user.XP,
		Level:      user.Level,
		BoostUntil: user.XPBoostUntil,
	}
	result := progression.ApplyDelta(state, delta, table, g.now())

	userRepo := g.userRepo.WithTx(tx)
	eventRepo := g.eventRepo.WithTx(tx)
	noteRepo := g.noteRepo.WithTx(tx)

	fields := map[string]any{
		"xp":    result.TotalXP,
		"level": result.NewLevel,
	}
	if err := userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
		return progression.Result{}, err
	}

	event := &models.XPEvent{
		ID:      uuid.New(),
		UserID:  user.ID,
		Delta:   delta,
		Applied: result.AppliedDelta,
		Reason:  reason,
		RefID:   refID,
	}
	if err := eventRepo.Append(ctx, event); err != nil {
		return progression.Result{}, err
	}

	if result.LeveledUp {
		if err := noteRepo.Create(ctx, notifications.NewLevelUp(user.ID, result.NewLevel)); err != nil {
			return progression.Result{}, err
		}
	}
	if result.LeveledDown {
		if err := noteRepo.Create(ctx, notifications.NewLevelDown(user.ID, result.NewLevel)); err != nil {
			return progression.Result{}, err
		}
	}

	user.XP = result.TotalXP
	user.Level = result.NewLevel
	return result, nil
}
