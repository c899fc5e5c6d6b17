package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/subscription"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

type fakeUserRepo struct {
	users.Repository
	expiring []models.User
	listErr  error
}

func (f *fakeUserRepo) ListWithExpiringPlans(ctx context.Context, horizon time.Time, limit int) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > 0 && len(f.expiring) > limit {
		return f.expiring[:limit], nil
	}
	return f.expiring, nil
}

type fakeSubscriptionService struct {
	reconciled []uuid.UUID
	failFor    map[uuid.UUID]error
	assess     func(user *models.User) subscription.Assessment
}

func (f *fakeSubscriptionService) Status(ctx context.Context, userID uuid.UUID) (*subscription.Assessment, error) {
	return nil, errors.New("not used")
}

func (f *fakeSubscriptionService) Reconcile(ctx context.Context, user *models.User) (*subscription.Assessment, error) {
	if err, ok := f.failFor[user.ID]; ok {
		return nil, err
	}
	f.reconciled = append(f.reconciled, user.ID)
	assessment := f.assess(user)
	return &assessment, nil
}

func TestSubscriptionSweepJob_ReconcilesCandidates(t *testing.T) {
	expired := models.User{ID: uuid.New(), Role: enums.UserRolePremium}
	warned := models.User{ID: uuid.New(), Role: enums.UserRoleVIP}

	subs := &fakeSubscriptionService{
		assess: func(user *models.User) subscription.Assessment {
			if user.ID == expired.ID {
				return subscription.Assessment{ShouldExpire: true}
			}
			return subscription.Assessment{Active: true, ShouldWarn: true, DaysRemaining: 2}
		},
	}

	job, err := NewSubscriptionSweepJob(SubscriptionSweepJobParams{
		Logger:       testLogger(),
		UserRepo:     &fakeUserRepo{expiring: []models.User{expired, warned}},
		Subscription: subs,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(subs.reconciled) != 2 {
		t.Fatalf("expected 2 reconciled users, got %d", len(subs.reconciled))
	}
}

func TestSubscriptionSweepJob_CollectsPerUserErrors(t *testing.T) {
	broken := models.User{ID: uuid.New(), Role: enums.UserRolePremium}
	fine := models.User{ID: uuid.New(), Role: enums.UserRolePremium}

	subs := &fakeSubscriptionService{
		failFor: map[uuid.UUID]error{broken.ID: errors.New("db down")},
		assess: func(user *models.User) subscription.Assessment {
			return subscription.Assessment{Active: true}
		},
	}

	job, err := NewSubscriptionSweepJob(SubscriptionSweepJobParams{
		Logger:       testLogger(),
		UserRepo:     &fakeUserRepo{expiring: []models.User{broken, fine}},
		Subscription: subs,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(subs.reconciled) != 1 || subs.reconciled[0] != fine.ID {
		t.Fatal("one failing user must not stop the sweep")
	}
}

func TestSubscriptionSweepJob_RespectsLimit(t *testing.T) {
	var candidates []models.User
	for i := 0; i < 5; i++ {
		candidates = append(candidates, models.User{ID: uuid.New(), Role: enums.UserRolePremium})
	}

	subs := &fakeSubscriptionService{
		assess: func(user *models.User) subscription.Assessment {
			return subscription.Assessment{Active: true}
		},
	}

	job, err := NewSubscriptionSweepJob(SubscriptionSweepJobParams{
		Logger:       testLogger(),
		UserRepo:     &fakeUserRepo{expiring: candidates},
		Subscription: subs,
		Limit:        3,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(subs.reconciled) != 3 {
		t.Fatalf("expected 3 reconciled users, got %d", len(subs.reconciled))
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func TestNotificationCleanupJob_DeletesOldReadRows(t *testing.T) {
	ctx := context.Background()
	dsn := "file:cron_cleanup_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	now := time.Date(2026, time.June, 9, 6, 0, 0, 0, time.UTC)
	oldRead := now.Add(-40 * 24 * time.Hour)
	freshRead := now.Add(-time.Hour)

	userID := uuid.New()
	rows := []*models.Notification{
		{ID: uuid.New(), UserID: userID, Kind: enums.NotificationKindInfo, Title: "old read", Message: "m", ReadAt: &oldRead},
		{ID: uuid.New(), UserID: userID, Kind: enums.NotificationKindInfo, Title: "fresh read", Message: "m", ReadAt: &freshRead},
		{ID: uuid.New(), UserID: userID, Kind: enums.NotificationKindInfo, Title: "unread", Message: "m"},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     testLogger(),
		DB:         gormTxRunner{db: db},
		Repository: notifications.NewRepository(db),
		Retention:  30 * 24 * time.Hour,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := job.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	var remaining int64
	if err := db.Model(&models.Notification{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", remaining)
	}
}
