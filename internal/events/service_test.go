package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/economy"
	"github.com/brightpath/academy-backend/internal/levels"
	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

func setupEventsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:events_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'nope',
  xp INTEGER NOT NULL DEFAULT 0,
  level INTEGER NOT NULL DEFAULT 1,
  xp_boost_until DATETIME,
  plan_expires DATETIME,
  notified_expiring INTEGER NOT NULL DEFAULT 0,
  last_daily_claim TEXT,
  is_banned INTEGER NOT NULL DEFAULT 0,
  muted_until DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS level_thresholds (
  level INTEGER PRIMARY KEY,
  xp_required INTEGER NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS calendar_events (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  tier TEXT NOT NULL DEFAULT 'student',
  starts_at DATETIME NOT NULL,
  xp_reward INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS event_registrations (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'registered',
  approved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (event_id, user_id)
);`,
		`CREATE TABLE IF NOT EXISTS xp_events (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  delta INTEGER NOT NULL,
  applied INTEGER NOT NULL,
  reason TEXT NOT NULL,
  ref_id TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}

	thresholds := []models.LevelThreshold{
		{Level: 1, XPRequired: 0},
		{Level: 2, XPRequired: 1000},
	}
	require.NoError(t, db.Create(&thresholds).Error)

	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type eventsFixture struct {
	svc   Service
	db    *gorm.DB
	users users.Repository
}

func newEventsFixture(t *testing.T) *eventsFixture {
	t.Helper()

	db := setupEventsTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "events-test", Output: io.Discard})
	now := time.Date(2026, time.June, 4, 18, 0, 0, 0, time.UTC)

	userRepo := users.NewRepository(db)
	noteRepo := notifications.NewRepository(db)

	granter, err := economy.NewGranter(economy.GranterParams{
		LevelRepo:        levels.NewRepository(db),
		UserRepo:         userRepo,
		XPEventRepo:      economy.NewXPEventRepository(db),
		NotificationRepo: noteRepo,
		Now:              func() time.Time { return now },
	})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Logger:           logg,
		DB:               gormTxRunner{db: db},
		Repo:             NewRepository(db),
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
		Now:              func() time.Time { return now },
	})
	require.NoError(t, err)

	return &eventsFixture{svc: svc, db: db, users: userRepo}
}

func (f *eventsFixture) seedUser(t *testing.T, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.New(),
		Email: uuid.NewString() + "@academy.test",
		Name:  "Test Learner",
		Role:  role,
		Level: 1,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *eventsFixture) seedEvent(t *testing.T, tier enums.UserRole, reward int) *models.CalendarEvent {
	t.Helper()
	event := &models.CalendarEvent{
		ID:       uuid.New(),
		Title:    "Live Workshop",
		Tier:     tier,
		StartsAt: time.Date(2026, time.June, 20, 17, 0, 0, 0, time.UTC),
		XPReward: reward,
	}
	require.NoError(t, f.db.Create(event).Error)
	return event
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	f := newEventsFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	event := f.seedEvent(t, enums.UserRoleStudent, 150)

	registration, err := f.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RegistrationStatusRegistered, registration.Status)

	_, err = f.svc.Register(ctx, user.ID, event.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRegister_TierForbidden(t *testing.T) {
	f := newEventsFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	event := f.seedEvent(t, enums.UserRoleVIP, 0)

	_, err := f.svc.Register(context.Background(), user.ID, event.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestApproveRegistration_PaysOnce(t *testing.T) {
	ctx := context.Background()
	f := newEventsFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	event := f.seedEvent(t, enums.UserRoleStudent, 400)

	registration, err := f.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	approved, err := f.svc.ApproveRegistration(ctx, registration.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RegistrationStatusApproved, approved.Registration.Status)
	require.NotNil(t, approved.Registration.ApprovedAt)
	require.NotNil(t, approved.Progression)
	assert.Equal(t, 400, approved.Progression.TotalXP)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 400, stored.XP)

	_, err = f.svc.ApproveRegistration(ctx, registration.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	stored, err = f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 400, stored.XP, "reward must pay exactly once")
}

func TestRejectRegistration(t *testing.T) {
	ctx := context.Background()
	f := newEventsFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	event := f.seedEvent(t, enums.UserRoleStudent, 400)

	registration, err := f.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.RejectRegistration(ctx, registration.ID))

	// a rejected registration cannot be approved later
	_, err = f.svc.ApproveRegistration(ctx, registration.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.XP)
}

func TestCreateEvent_AndList(t *testing.T) {
	ctx := context.Background()
	f := newEventsFixture(t)

	created, err := f.svc.CreateEvent(ctx, EventInput{
		Title:    "Premium AMA",
		Tier:     enums.UserRolePremium,
		StartsAt: time.Date(2026, time.July, 1, 16, 0, 0, 0, time.UTC),
		XPReward: 50,
	})
	require.NoError(t, err)

	visible, err := f.svc.ListEvents(ctx, enums.UserRoleStudent)
	require.NoError(t, err)
	assert.Empty(t, visible)

	visible, err = f.svc.ListEvents(ctx, enums.UserRolePremium)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, created.ID, visible[0].ID)
}
