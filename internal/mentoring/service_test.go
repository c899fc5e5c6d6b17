package mentoring

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

	"github.com/brightpath/academy-backend/internal/access"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

func setupMentoringTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:mentoring_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		`CREATE TABLE IF NOT EXISTS mentors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  bio TEXT NOT NULL DEFAULT '',
  tier TEXT NOT NULL DEFAULT 'premium',
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS mentoring_bookings (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  mentor_id TEXT NOT NULL,
  scheduled_at DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  is_free INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

type mentoringFixture struct {
	svc Service
	db  *gorm.DB
	now time.Time
}

func newMentoringFixture(t *testing.T) *mentoringFixture {
	t.Helper()

	db := setupMentoringTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "mentoring-test", Output: io.Discard})

	// Free slot accounting compares booking created_at against the current
	// month window, so the clock stays real here.
	now := time.Now().UTC()

	svc, err := NewService(ServiceParams{
		Logger:     logg,
		Repo:       NewRepository(db),
		UserRepo:   users.NewRepository(db),
		Allowances: access.Allowances{Premium: 1, VIP: 20},
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)

	return &mentoringFixture{svc: svc, db: db, now: now}
}

func (f *mentoringFixture) seedUser(t *testing.T, role enums.UserRole) *models.User {
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

func (f *mentoringFixture) seedMentor(t *testing.T, tier enums.UserRole) *models.Mentor {
	t.Helper()
	mentor := &models.Mentor{
		ID:   uuid.New(),
		Name: "Ada",
		Tier: tier,
	}
	require.NoError(t, f.db.Create(mentor).Error)
	return mentor
}

func TestBookSession_PremiumGetsOneFreeSlot(t *testing.T) {
	ctx := context.Background()
	f := newMentoringFixture(t)
	user := f.seedUser(t, enums.UserRolePremium)
	mentor := f.seedMentor(t, enums.UserRolePremium)
	when := f.now.Add(48 * time.Hour)

	first, err := f.svc.BookSession(ctx, user.ID, mentor.ID, when)
	require.NoError(t, err)
	assert.True(t, first.Booking.IsFree)
	assert.True(t, first.FreeSlotUsed)
	assert.EqualValues(t, 0, first.FreeSlotsLeft)
	assert.False(t, first.UnlimitedSlots)

	second, err := f.svc.BookSession(ctx, user.ID, mentor.ID, when.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, second.Booking.IsFree, "allowance is one per month")
	assert.False(t, second.FreeSlotUsed)
}

func TestBookSession_CancellationReturnsSlot(t *testing.T) {
	ctx := context.Background()
	f := newMentoringFixture(t)
	user := f.seedUser(t, enums.UserRolePremium)
	mentor := f.seedMentor(t, enums.UserRolePremium)
	when := f.now.Add(48 * time.Hour)

	first, err := f.svc.BookSession(ctx, user.ID, mentor.ID, when)
	require.NoError(t, err)
	require.True(t, first.Booking.IsFree)

	require.NoError(t, f.svc.CancelBooking(ctx, user.ID, first.Booking.ID))

	again, err := f.svc.BookSession(ctx, user.ID, mentor.ID, when.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, again.Booking.IsFree, "cancelled booking gives the slot back")
}

func TestBookSession_AdminUnlimited(t *testing.T) {
	ctx := context.Background()
	f := newMentoringFixture(t)
	user := f.seedUser(t, enums.UserRoleAdmin)
	mentor := f.seedMentor(t, enums.UserRolePremium)
	when := f.now.Add(48 * time.Hour)

	for i := 0; i < 3; i++ {
		result, err := f.svc.BookSession(ctx, user.ID, mentor.ID, when.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.True(t, result.Booking.IsFree)
		assert.True(t, result.UnlimitedSlots)
	}
}

func TestBookSession_StudentHasNoFreeSlots(t *testing.T) {
	ctx := context.Background()
	f := newMentoringFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	mentor := f.seedMentor(t, enums.UserRoleStudent)

	result, err := f.svc.BookSession(ctx, user.ID, mentor.ID, f.now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Booking.IsFree)
	assert.False(t, result.FreeSlotUsed)
}

func TestBookSession_TierForbidden(t *testing.T) {
	f := newMentoringFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	mentor := f.seedMentor(t, enums.UserRoleVIP)

	_, err := f.svc.BookSession(context.Background(), user.ID, mentor.ID, f.now.Add(48*time.Hour))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestBookSession_PastTimeRejected(t *testing.T) {
	f := newMentoringFixture(t)
	user := f.seedUser(t, enums.UserRolePremium)
	mentor := f.seedMentor(t, enums.UserRolePremium)

	_, err := f.svc.BookSession(context.Background(), user.ID, mentor.ID, f.now.Add(-time.Hour))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCancelBooking_OnlyOwner(t *testing.T) {
	ctx := context.Background()
	f := newMentoringFixture(t)
	owner := f.seedUser(t, enums.UserRolePremium)
	other := f.seedUser(t, enums.UserRolePremium)
	mentor := f.seedMentor(t, enums.UserRolePremium)

	booking, err := f.svc.BookSession(ctx, owner.ID, mentor.ID, f.now.Add(48*time.Hour))
	require.NoError(t, err)

	err = f.svc.CancelBooking(ctx, other.ID, booking.Booking.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestConfirmBooking_AdminTransitions(t *testing.T) {
	ctx := context.Background()
	f := newMentoringFixture(t)
	user := f.seedUser(t, enums.UserRolePremium)
	mentor := f.seedMentor(t, enums.UserRolePremium)

	booking, err := f.svc.BookSession(ctx, user.ID, mentor.ID, f.now.Add(48*time.Hour))
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmBooking(ctx, booking.Booking.ID))

	// a confirmed booking cannot be rejected
	err = f.svc.RejectBooking(ctx, booking.Booking.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}
