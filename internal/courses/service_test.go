package courses

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

func setupCoursesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:courses_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		`CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  tier TEXT NOT NULL DEFAULT 'student',
  open INTEGER NOT NULL DEFAULT 0,
  xp_reward INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS lessons (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL,
  title TEXT NOT NULL,
  position INTEGER NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS course_progresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  is_completed INTEGER NOT NULL DEFAULT 0,
  last_lesson_id TEXT,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, course_id)
);`,
		`CREATE TABLE IF NOT EXISTS lesson_completions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  lesson_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, lesson_id)
);`,
		`CREATE TABLE IF NOT EXISTS certificates (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  student_name TEXT NOT NULL,
  course_title TEXT NOT NULL,
  issued_on TEXT NOT NULL,
  verification_code TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  UNIQUE (user_id, course_id)
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

type coursesFixture struct {
	svc   Service
	db    *gorm.DB
	repo  Repository
	users users.Repository
}

func newCoursesFixture(t *testing.T) *coursesFixture {
	t.Helper()

	db := setupCoursesTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "courses-test", Output: io.Discard})
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	userRepo := users.NewRepository(db)
	courseRepo := NewRepository(db)
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
		Repo:             courseRepo,
		UserRepo:         userRepo,
		NotificationRepo: noteRepo,
		Granter:          granter,
		Now:              func() time.Time { return now },
	})
	require.NoError(t, err)

	return &coursesFixture{svc: svc, db: db, repo: courseRepo, users: userRepo}
}

func (f *coursesFixture) seedUser(t *testing.T, role enums.UserRole) *models.User {
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

func (f *coursesFixture) seedCourse(t *testing.T, tier enums.UserRole, open bool, reward, lessonCount int) (*models.Course, []models.Lesson) {
	t.Helper()
	course := &models.Course{
		ID:       uuid.New(),
		Title:    "Intro to Testing",
		Tier:     tier,
		Open:     open,
		XPReward: reward,
	}
	require.NoError(t, f.db.Create(course).Error)

	lessons := make([]models.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lessons = append(lessons, models.Lesson{
			ID:       uuid.New(),
			CourseID: course.ID,
			Title:    "Lesson",
			Position: i + 1,
		})
	}
	require.NoError(t, f.db.Create(&lessons).Error)
	return course, lessons
}

func TestListCourses_FiltersByTier(t *testing.T) {
	ctx := context.Background()
	f := newCoursesFixture(t)
	f.seedCourse(t, enums.UserRoleStudent, false, 0, 1)
	f.seedCourse(t, enums.UserRoleStudent, true, 0, 1)
	f.seedCourse(t, enums.UserRoleVIP, false, 0, 1)

	visible, err := f.svc.ListCourses(ctx, enums.UserRoleNope)
	require.NoError(t, err)
	assert.Len(t, visible, 1, "inactive plan sees only open teasers")

	visible, err = f.svc.ListCourses(ctx, enums.UserRoleStudent)
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	visible, err = f.svc.ListCourses(ctx, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.Len(t, visible, 3)
}

func TestGetCourse_TierGate(t *testing.T) {
	ctx := context.Background()
	f := newCoursesFixture(t)
	course, _ := f.seedCourse(t, enums.UserRolePremium, false, 0, 1)

	_, err := f.svc.GetCourse(ctx, enums.UserRoleStudent, course.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	got, err := f.svc.GetCourse(ctx, enums.UserRoleVIP, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, got.ID)
}

func TestCompleteLesson_RewardsCourseOnce(t *testing.T) {
	ctx := context.Background()
	f := newCoursesFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	course, lessons := f.seedCourse(t, enums.UserRoleStudent, false, 500, 2)

	first, err := f.svc.CompleteLesson(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.False(t, first.LessonAlreadyDone)
	assert.False(t, first.CourseCompleted)
	assert.EqualValues(t, 1, first.CompletedLessons)
	assert.EqualValues(t, 2, first.TotalLessons)
	assert.Nil(t, first.Certificate)

	second, err := f.svc.CompleteLesson(ctx, user.ID, course.ID, lessons[1].ID)
	require.NoError(t, err)
	assert.True(t, second.CourseCompleted)
	require.NotNil(t, second.Progression)
	assert.Equal(t, 500, second.Progression.TotalXP)
	require.NotNil(t, second.Certificate)
	assert.Equal(t, user.Name, second.Certificate.StudentName)
	assert.Equal(t, course.Title, second.Certificate.CourseTitle)
	assert.NotEmpty(t, second.Certificate.VerificationCode)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.XP)
}

func TestCompleteLesson_RepeatLessonDoesNotDoublePay(t *testing.T) {
	ctx := context.Background()
	f := newCoursesFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	course, lessons := f.seedCourse(t, enums.UserRoleStudent, false, 500, 1)

	done, err := f.svc.CompleteLesson(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, done.CourseCompleted)

	repeat, err := f.svc.CompleteLesson(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, repeat.LessonAlreadyDone)
	assert.False(t, repeat.CourseCompleted)
	assert.Nil(t, repeat.Progression)
	assert.Nil(t, repeat.Certificate)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.XP, "reward must pay exactly once")

	var certCount int64
	require.NoError(t, f.db.Model(&models.Certificate{}).Where("user_id = ?", user.ID).Count(&certCount).Error)
	assert.EqualValues(t, 1, certCount)
}

func TestCompleteLesson_TierForbidden(t *testing.T) {
	ctx := context.Background()
	f := newCoursesFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	course, lessons := f.seedCourse(t, enums.UserRoleVIP, false, 100, 1)

	_, err := f.svc.CompleteLesson(ctx, user.ID, course.ID, lessons[0].ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestCompleteLesson_UnknownLesson(t *testing.T) {
	ctx := context.Background()
	f := newCoursesFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	course, _ := f.seedCourse(t, enums.UserRoleStudent, false, 0, 1)

	_, err := f.svc.CompleteLesson(ctx, user.ID, course.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestVerifyCertificate(t *testing.T) {
	ctx := context.Background()
	f := newCoursesFixture(t)
	user := f.seedUser(t, enums.UserRoleStudent)
	course, lessons := f.seedCourse(t, enums.UserRoleStudent, false, 100, 1)

	done, err := f.svc.CompleteLesson(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, done.Certificate)

	found, err := f.svc.VerifyCertificate(ctx, done.Certificate.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, done.Certificate.ID, found.ID)

	_, err = f.svc.VerifyCertificate(ctx, "NOPE1234")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	mine, err := f.svc.ListCertificates(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}
