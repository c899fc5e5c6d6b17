package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`).Error)

	return db
}

func newNotificationsService(t *testing.T, db *gorm.DB, now time.Time) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func seedNotifications(t *testing.T, db *gorm.DB, userID uuid.UUID, count int, base time.Time) {
	t.Helper()
	for i := 0; i < count; i++ {
		note := New(userID, enums.NotificationKindInfo, "Title", "Message")
		note.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(note).Error)
	}
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupNotificationsTestDB(t)
	now := time.Date(2026, time.June, 6, 12, 0, 0, 0, time.UTC)
	svc := newNotificationsService(t, db, now)
	userID := uuid.New()
	seedNotifications(t, db, userID, 5, now)

	first, err := svc.List(ctx, ListParams{UserID: userID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Items, 3)
	require.NotEmpty(t, first.Cursor)
	assert.True(t, first.Items[0].CreatedAt.After(first.Items[1].CreatedAt))

	second, err := svc.List(ctx, ListParams{UserID: userID, Limit: 3, Cursor: first.Cursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Empty(t, second.Cursor)

	seen := map[uuid.UUID]bool{}
	for _, n := range append(first.Items, second.Items...) {
		require.False(t, seen[n.ID], "pages must not overlap")
		seen[n.ID] = true
	}
}

func TestList_UnreadOnly(t *testing.T) {
	ctx := context.Background()
	db := setupNotificationsTestDB(t)
	now := time.Date(2026, time.June, 6, 12, 0, 0, 0, time.UTC)
	svc := newNotificationsService(t, db, now)
	userID := uuid.New()
	seedNotifications(t, db, userID, 3, now)

	all, err := svc.List(ctx, ListParams{UserID: userID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)

	require.NoError(t, svc.MarkRead(ctx, userID, all.Items[0].ID))

	unread, err := svc.List(ctx, ListParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread.Items, 2)
}

func TestList_InvalidCursor(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newNotificationsService(t, db, time.Now())

	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-a-cursor"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestMarkRead_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	db := setupNotificationsTestDB(t)
	now := time.Date(2026, time.June, 6, 12, 0, 0, 0, time.UTC)
	svc := newNotificationsService(t, db, now)
	owner := uuid.New()
	stranger := uuid.New()
	seedNotifications(t, db, owner, 1, now)

	list, err := svc.List(ctx, ListParams{UserID: owner, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	noteID := list.Items[0].ID

	err = svc.MarkRead(ctx, stranger, noteID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	require.NoError(t, svc.MarkRead(ctx, owner, noteID))

	// marking an already-read notification stays idempotent
	require.NoError(t, svc.MarkRead(ctx, owner, noteID))
}

func TestMarkAllRead_CountsOnlyUnread(t *testing.T) {
	ctx := context.Background()
	db := setupNotificationsTestDB(t)
	now := time.Date(2026, time.June, 6, 12, 0, 0, 0, time.UTC)
	svc := newNotificationsService(t, db, now)
	userID := uuid.New()
	seedNotifications(t, db, userID, 3, now)

	count, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	db := setupNotificationsTestDB(t)
	now := time.Date(2026, time.June, 6, 12, 0, 0, 0, time.UTC)
	svc := newNotificationsService(t, db, now)
	owner := uuid.New()
	seedNotifications(t, db, owner, 1, now)

	list, err := svc.List(ctx, ListParams{UserID: owner, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	err = svc.Delete(ctx, uuid.New(), list.Items[0].ID)
	require.Error(t, err)

	require.NoError(t, svc.Delete(ctx, owner, list.Items[0].ID))

	list, err = svc.List(ctx, ListParams{UserID: owner, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestDeleteReadBefore_KeepsUnread(t *testing.T) {
	ctx := context.Background()
	db := setupNotificationsTestDB(t)
	now := time.Date(2026, time.June, 6, 12, 0, 0, 0, time.UTC)
	repo := NewRepository(db)
	svc := newNotificationsService(t, db, now)
	userID := uuid.New()
	seedNotifications(t, db, userID, 4, now.Add(-48*time.Hour))

	list, err := svc.List(ctx, ListParams{UserID: userID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 4)
	require.NoError(t, svc.MarkRead(ctx, userID, list.Items[0].ID))
	require.NoError(t, svc.MarkRead(ctx, userID, list.Items[1].ID))

	deleted, err := repo.DeleteReadBefore(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	remaining, err := svc.List(ctx, ListParams{UserID: userID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, remaining.Items, 2, "unread rows survive retention cleanup")
}
