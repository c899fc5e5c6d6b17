package economy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/progression"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// dailyClaimDateFormat pins claims to calendar-date identity. Two claims on
// the same date conflict no matter how far apart their clock times are.
const dailyClaimDateFormat = "2006-01-02"

// Rand is the random source for loot box resolution. Injectable so tests can
// force a branch.
type Rand interface {
	Intn(n int) int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service carries the XP economy operations.
type Service interface {
	// ClaimDaily grants the fixed daily reward once per calendar date.
	ClaimDaily(ctx context.Context, userID uuid.UUID) (*ClaimResult, error)
	// Purchase spends XP on a shop artifact and merges it into the inventory.
	// The level may drop; that is the documented cost of spending.
	Purchase(ctx context.Context, userID, artifactID uuid.UUID) (*PurchaseResult, error)
	// Consume uses one owned unit and applies its effect. Loot boxes are
	// resolved here, server-side, in the same transaction as the decrement.
	Consume(ctx context.Context, userID, artifactID uuid.UUID) (*ConsumeResult, error)
	ListShop(ctx context.Context) ([]models.Artifact, error)
	ListInventory(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
	ListLedger(ctx context.Context, userID uuid.UUID, limit int) ([]models.XPEvent, error)

	// Admin artifact management.
	CreateArtifact(ctx context.Context, input ArtifactInput) (*models.Artifact, error)
	UpdateArtifact(ctx context.Context, artifactID uuid.UUID, input ArtifactInput) (*models.Artifact, error)
	DeleteArtifact(ctx context.Context, artifactID uuid.UUID) error
}

// ClaimResult reports the outcome of a daily claim.
type ClaimResult struct {
	Progression progression.Result `json:"progression"`
	ClaimDate   string             `json:"claim_date"`
}

// PurchaseResult reports the outcome of a shop purchase.
type PurchaseResult struct {
	Progression progression.Result `json:"progression"`
	Artifact    models.Artifact    `json:"artifact"`
}

// ConsumeResult reports what consuming an artifact did. Exactly one of the
// effect fields is populated for loot boxes.
type ConsumeResult struct {
	Effect         enums.ArtifactEffect `json:"effect"`
	BoostUntil     *time.Time           `json:"boost_until,omitempty"`
	LootXP         int                  `json:"loot_xp,omitempty"`
	LootArtifact   *models.Artifact     `json:"loot_artifact,omitempty"`
	Progression    *progression.Result  `json:"progression,omitempty"`
	RemainingOwned bool                 `json:"remaining_owned"`
}

// ArtifactInput is the admin create/update payload.
type ArtifactInput struct {
	Name                string               `json:"name" validate:"required,min=1,max=120"`
	Description         string               `json:"description" validate:"max=2000"`
	Price               int                  `json:"price" validate:"gte=0"`
	Effect              enums.ArtifactEffect `json:"effect" validate:"required"`
	EffectDurationHours int                  `json:"effect_duration_hours" validate:"gte=0"`
}

// ServiceParams configure the economy service.
type ServiceParams struct {
	Logger           *logger.Logger
	DB               txRunner
	UserRepo         users.Repository
	ArtifactRepo     ArtifactRepository
	InventoryRepo    InventoryRepository
	XPEventRepo      XPEventRepository
	NotificationRepo notifications.Repository
	Granter          Granter
	DailyClaimXP     int
	LootBoxMinXP     int
	LootBoxMaxXP     int
	BoostDuration    time.Duration
	Rand             Rand
	Now              func() time.Time
}

type service struct {
	logg          *logger.Logger
	db            txRunner
	userRepo      users.Repository
	artifactRepo  ArtifactRepository
	inventoryRepo InventoryRepository
	eventRepo     XPEventRepository
	noteRepo      notifications.Repository
	granter       Granter
	dailyClaimXP  int
	lootMinXP     int
	lootMaxXP     int
	boostDuration time.Duration
	rand          Rand
	now           func() time.Time
}

// NewService wires economy dependencies.
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
	if params.ArtifactRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "artifacts repository required")
	}
	if params.InventoryRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if params.XPEventRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "xp events repository required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Granter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "granter required")
	}
	if params.Rand == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "random source required")
	}
	if params.DailyClaimXP <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "daily claim reward must be positive")
	}
	if params.LootBoxMinXP <= 0 || params.LootBoxMaxXP < params.LootBoxMinXP {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "loot box XP bounds are invalid")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	boost := params.BoostDuration
	if boost <= 0 {
		boost = 24 * time.Hour
	}
	return &service{
		logg:          params.Logger,
		db:            params.DB,
		userRepo:      params.UserRepo,
		artifactRepo:  params.ArtifactRepo,
		inventoryRepo: params.InventoryRepo,
		eventRepo:     params.XPEventRepo,
		noteRepo:      params.NotificationRepo,
		granter:       params.Granter,
		dailyClaimXP:  params.DailyClaimXP,
		lootMinXP:     params.LootBoxMinXP,
		lootMaxXP:     params.LootBoxMaxXP,
		boostDuration: boost,
		rand:          params.Rand,
		now:           now,
	}, nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
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
	return user, nil
}

func (s *service) ClaimDaily(ctx context.Context, userID uuid.UUID) (*ClaimResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Format(dailyClaimDateFormat)
	if user.LastDailyClaim != nil && *user.LastDailyClaim == today {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "daily reward already claimed today")
	}

	var result progression.Result
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		result, err = s.granter.Apply(ctx, tx, user, s.dailyClaimXP, enums.XPReasonDailyClaim, nil)
		if err != nil {
			return err
		}
		if err := s.userRepo.WithTx(tx).UpdateFields(ctx, user.ID, map[string]any{"last_daily_claim": today}); err != nil {
			return err
		}
		return s.noteRepo.WithTx(tx).Create(ctx, notifications.NewDailyReward(user.ID, result.AppliedDelta))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist daily claim")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id": user.ID,
		"applied": result.AppliedDelta,
		"date":    today,
	})
	s.logg.Info(logCtx, "daily reward claimed")
	return &ClaimResult{Progression: result, ClaimDate: today}, nil
}

func (s *service) Purchase(ctx context.Context, userID, artifactID uuid.UUID) (*PurchaseResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if artifactID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artifact id required")
	}

	artifact, err := s.artifactRepo.FindByID(ctx, artifactID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artifact")
	}
	if artifact == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
	}
	if user.XP < artifact.Price {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "not enough XP for this purchase")
	}

	var result progression.Result
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		refID := artifact.ID
		result, err = s.granter.Apply(ctx, tx, user, -artifact.Price, enums.XPReasonPurchase, &refID)
		if err != nil {
			return err
		}
		if err := s.inventoryRepo.WithTx(tx).AddOne(ctx, user.ID, artifact.ID); err != nil {
			return err
		}
		return s.noteRepo.WithTx(tx).Create(ctx, notifications.NewPurchase(user.ID, artifact.Name, artifact.Price))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist purchase")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":     user.ID,
		"artifact_id": artifact.ID,
		"price":       artifact.Price,
		"new_level":   result.NewLevel,
	})
	s.logg.Info(logCtx, "artifact purchased")
	return &PurchaseResult{Progression: result, Artifact: *artifact}, nil
}

func (s *service) Consume(ctx context.Context, userID, artifactID uuid.UUID) (*ConsumeResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if artifactID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artifact id required")
	}

	item, err := s.inventoryRepo.Find(ctx, userID, artifactID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	if item == nil || item.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not in inventory")
	}
	artifact := item.Artifact
	if artifact == nil {
		artifact, err = s.artifactRepo.FindByID(ctx, artifactID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artifact")
		}
		if artifact == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
		}
	}

	outcome := &ConsumeResult{
		Effect:         artifact.Effect,
		RemainingOwned: item.Quantity > 1,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		removed, err := s.inventoryRepo.WithTx(tx).RemoveOne(ctx, userID, artifactID)
		if err != nil {
			return err
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "artifact already consumed")
		}

		switch artifact.Effect {
		case enums.ArtifactEffectXPBoost:
			return s.applyBoost(ctx, tx, user, artifact, outcome)
		case enums.ArtifactEffectLootBox:
			return s.openLootBox(ctx, tx, user, artifact, outcome)
		}
		return nil
	})
	if err != nil {
		if pkgErr := pkgerrors.As(err); pkgErr != nil {
			return nil, pkgErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist consume")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":     user.ID,
		"artifact_id": artifact.ID,
		"effect":      artifact.Effect,
	})
	s.logg.Info(logCtx, "artifact consumed")
	return outcome, nil
}

func (s *service) applyBoost(ctx context.Context, tx *gorm.DB, user *models.User, artifact *models.Artifact, outcome *ConsumeResult) error {
	duration := s.boostDuration
	if artifact.EffectDurationHours > 0 {
		duration = time.Duration(artifact.EffectDurationHours) * time.Hour
	}
	until := s.now().UTC().Add(duration)

	if err := s.userRepo.WithTx(tx).UpdateFields(ctx, user.ID, map[string]any{"xp_boost_until": until}); err != nil {
		return err
	}
	user.XPBoostUntil = &until
	outcome.BoostUntil = &until

	hours := int(duration / time.Hour)
	return s.noteRepo.WithTx(tx).Create(ctx, notifications.NewBoostActivated(user.ID, hours))
}

// openLootBox rolls the box's contents: a fair coin between an XP grant in the
// configured range and a uniformly chosen non-box artifact. An empty artifact
// pool falls back to the XP branch so the box is never a dud.
func (s *service) openLootBox(ctx context.Context, tx *gorm.DB, user *models.User, box *models.Artifact, outcome *ConsumeResult) error {
	rollXP := s.rand.Intn(2) == 0

	var pool []models.Artifact
	if !rollXP {
		var err error
		pool, err = s.artifactRepo.WithTx(tx).ListLootPool(ctx)
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			rollXP = true
		}
	}

	if rollXP {
		xp := s.lootMinXP + s.rand.Intn(s.lootMaxXP-s.lootMinXP+1)
		refID := box.ID
		result, err := s.granter.Apply(ctx, tx, user, xp, enums.XPReasonLootBox, &refID)
		if err != nil {
			return err
		}
		outcome.LootXP = xp
		outcome.Progression = &result
		return s.noteRepo.WithTx(tx).Create(ctx, notifications.NewLootBoxXP(user.ID, result.AppliedDelta))
	}

	prize := pool[s.rand.Intn(len(pool))]
	if err := s.inventoryRepo.WithTx(tx).AddOne(ctx, user.ID, prize.ID); err != nil {
		return err
	}
	outcome.LootArtifact = &prize
	return s.noteRepo.WithTx(tx).Create(ctx, notifications.NewLootBoxItem(user.ID, prize.Name))
}

func (s *service) ListShop(ctx context.Context) ([]models.Artifact, error) {
	artifacts, err := s.artifactRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list artifacts")
	}
	return artifacts, nil
}

func (s *service) ListInventory(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	items, err := s.inventoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	return items, nil
}

func (s *service) ListLedger(ctx context.Context, userID uuid.UUID, limit int) ([]models.XPEvent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	events, err := s.eventRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list xp events")
	}
	return events, nil
}

func (s *service) CreateArtifact(ctx context.Context, input ArtifactInput) (*models.Artifact, error) {
	if !input.Effect.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid artifact effect")
	}
	artifact := &models.Artifact{
		ID:                  uuid.New(),
		Name:                input.Name,
		Description:         input.Description,
		Price:               input.Price,
		Effect:              input.Effect,
		EffectDurationHours: input.EffectDurationHours,
	}
	if err := s.artifactRepo.Create(ctx, artifact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create artifact")
	}
	return artifact, nil
}

func (s *service) UpdateArtifact(ctx context.Context, artifactID uuid.UUID, input ArtifactInput) (*models.Artifact, error) {
	if artifactID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artifact id required")
	}
	if !input.Effect.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid artifact effect")
	}

	existing, err := s.artifactRepo.FindByID(ctx, artifactID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artifact")
	}
	if existing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
	}

	fields := map[string]any{
		"name":                  input.Name,
		"description":           input.Description,
		"price":                 input.Price,
		"effect":                input.Effect,
		"effect_duration_hours": input.EffectDurationHours,
	}
	if err := s.artifactRepo.UpdateFields(ctx, artifactID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update artifact")
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Effect = input.Effect
	existing.EffectDurationHours = input.EffectDurationHours
	return existing, nil
}

func (s *service) DeleteArtifact(ctx context.Context, artifactID uuid.UUID) error {
	if artifactID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "artifact id required")
	}
	found, err := s.artifactRepo.Delete(ctx, artifactID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete artifact")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "artifact not found")
	}
	return nil
}
