package challenges

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

func setupChallengesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:challenges_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		`CREATE TABLE IF NOT EXISTS challenges (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  target_count INTEGER NOT NULL,
  xp_reward INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS challenge_progresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  challenge_id TEXT NOT NULL,
  count INTEGER NOT NULL DEFAULT 0,
  completed INTEGER NOT NULL DEFAULT 0,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, challenge_id)
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

type challengesFixture struct {
	svc   Service
	db    *gorm.DB
	users users.Repository
}

func newChallengesFixture(t *testing.T) *challengesFixture {
	t.Helper()

	db := setupChallengesTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "challenges-test", Output: io.Discard})
	now := time.Date(2026, time.June, 3, 8, 0, 0, 0, time.UTC)

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

	return &challengesFixture{svc: svc, db: db, users: userRepo}
}

func (f *challengesFixture) seedUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.New(),
		Email: uuid.NewString() + "@academy.test",
		Name:  "Test Learner",
		Role:  enums.UserRoleStudent,
		Level: 1,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *challengesFixture) seedChallenge(t *testing.T, target, reward int) *models.Challenge {
	t.Helper()
	challenge := &models.Challenge{
		ID:          uuid.New(),
		Title:       "Seven Day Streak",
		TargetCount: target,
		XPReward:    reward,
	}
	require.NoError(t, f.db.Create(challenge).Error)
	return challenge
}

func TestRecordAction_CompletesAtTarget(t *testing.T) {
	ctx := context.Background()
	f := newChallengesFixture(t)
	user := f.seedUser(t)
	challenge := f.seedChallenge(t, 3, 300)

	for i := 1; i <= 2; i++ {
		result, err := f.svc.RecordAction(ctx, user.ID, challenge.ID)
		require.NoError(t, err)
		assert.Equal(t, i, result.Count)
		assert.False(t, result.Completed)
		assert.Nil(t, result.Progression)
	}

	done, err := f.svc.RecordAction(ctx, user.ID, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, done.Count)
	assert.True(t, done.Completed)
	assert.True(t, done.JustDone)
	require.NotNil(t, done.Progression)
	assert.Equal(t, 300, done.Progression.TotalXP)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, stored.XP)
}

func TestRecordAction_AfterCompletionIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newChallengesFixture(t)
	user := f.seedUser(t)
	challenge := f.seedChallenge(t, 1, 300)

	done, err := f.svc.RecordAction(ctx, user.ID, challenge.ID)
	require.NoError(t, err)
	assert.True(t, done.JustDone)

	again, err := f.svc.RecordAction(ctx, user.ID, challenge.ID)
	require.NoError(t, err)
	assert.True(t, again.Completed)
	assert.False(t, again.JustDone)
	assert.Equal(t, 1, again.Count, "counter freezes after completion")
	assert.Nil(t, again.Progression)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, stored.XP, "reward must pay exactly once")
}

func TestRecordAction_UnknownChallenge(t *testing.T) {
	f := newChallengesFixture(t)
	user := f.seedUser(t)

	_, err := f.svc.RecordAction(context.Background(), user.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
