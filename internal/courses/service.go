package courses

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/internal/access"
	"github.com/brightpath/academy-backend/internal/economy"
	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/progression"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// issuedOnFormat is the human-readable date printed on certificates.
const issuedOnFormat = "January 2, 2006"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service carries course catalog, lesson progress, and certificate operations.
type Service interface {
	ListCourses(ctx context.Context, role enums.UserRole) ([]models.Course, error)
	GetCourse(ctx context.Context, role enums.UserRole, courseID uuid.UUID) (*models.Course, error)
	// CompleteLesson records the lesson into the user's completed set and,
	// when the set covers the whole course, flips completion exactly once:
	// one reward grant, one certificate, one notification.
	CompleteLesson(ctx context.Context, userID, courseID, lessonID uuid.UUID) (*CompleteLessonResult, error)
	ListCertificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
	VerifyCertificate(ctx context.Context, code string) (*models.Certificate, error)
}

// CompleteLessonResult describes what a lesson completion changed.
type CompleteLessonResult struct {
	LessonAlreadyDone bool                `json:"lesson_already_done"`
	CourseCompleted   bool                `json:"course_completed"`
	CompletedLessons  int64               `json:"completed_lessons"`
	TotalLessons      int64               `json:"total_lessons"`
	Progression       *progression.Result `json:"progression,omitempty"`
	Certificate       *models.Certificate `json:"certificate,omitempty"`
}

// ServiceParams configure the courses service.
type ServiceParams struct {
	Logger           *logger.Logger
	DB               txRunner
	Repo             Repository
	UserRepo         users.Repository
	NotificationRepo notifications.Repository
	Granter          economy.Granter
	Now              func() time.Time
}

type service struct {
	logg     *logger.Logger
	db       txRunner
	repo     Repository
	userRepo users.Repository
	noteRepo notifications.Repository
	granter  economy.Granter
	now      func() time.Time
}

// NewService wires courses dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "courses repository required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Granter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "granter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repo,
		userRepo: params.UserRepo,
		noteRepo: params.NotificationRepo,
		granter:  params.Granter,
		now:      now,
	}, nil
}

func (s *service) ListCourses(ctx context.Context, role enums.UserRole) ([]models.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courses")
	}

	visible := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if access.CanView(role, course.Tier, course.Open) {
			visible = append(visible, course)
		}
	}
	return visible, nil
}

func (s *service) GetCourse(ctx context.Context, role enums.UserRole, courseID uuid.UUID) (*models.Course, error) {
	if courseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course id required")
	}
	course, err := s.repo.FindCourse(ctx, courseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if course == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
	}
	if !access.CanView(role, course.Tier, course.Open) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "course requires a higher tier")
	}
	return course, nil
}

func (s *service) CompleteLesson(ctx context.Context, userID, courseID, lessonID uuid.UUID) (*CompleteLessonResult, error) {
	if userID == uuid.Nil || courseID == uuid.Nil || lessonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user, course, and lesson ids required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	course, err := s.repo.FindCourse(ctx, courseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if course == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
	}
	if !access.CanView(user.Role, course.Tier, course.Open) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "course requires a higher tier")
	}

	lesson, err := s.repo.FindLesson(ctx, courseID, lessonID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lesson")
	}
	if lesson == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lesson not found")
	}

	outcome := &CompleteLessonResult{}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		progress, err := repo.FindProgress(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if progress == nil {
			progress = &models.CourseProgress{
				ID:       uuid.New(),
				UserID:   userID,
				CourseID: courseID,
			}
			if err := repo.CreateProgress(ctx, progress); err != nil {
				return err
			}
		}

		inserted, err := repo.InsertLessonCompletion(ctx, &models.LessonCompletion{
			ID:       uuid.New(),
			UserID:   userID,
			CourseID: courseID,
			LessonID: lessonID,
		})
		if err != nil {
			return err
		}
		outcome.LessonAlreadyDone = !inserted

		// The last-visited lesson moves even when the set did not grow.
		if err := repo.UpdateProgressFields(ctx, progress.ID, map[string]any{"last_lesson_id": lessonID}); err != nil {
			return err
		}

		completed, err := repo.CountLessonCompletions(ctx, userID, courseID)
		if err != nil {
			return err
		}
		total, err := repo.CountLessons(ctx, courseID)
		if err != nil {
			return err
		}
		outcome.CompletedLessons = completed
		outcome.TotalLessons = total

		if progress.IsCompleted || total == 0 || completed < total {
			return nil
		}

		// Completion transition. Everything below happens at most once per
		// (user, course) because IsCompleted guards re-entry.
		completedAt := s.now().UTC()
		fields := map[string]any{
			"is_completed": true,
			"completed_at": completedAt,
		}
		if err := repo.UpdateProgressFields(ctx, progress.ID, fields); err != nil {
			return err
		}
		outcome.CourseCompleted = true

		if course.XPReward > 0 {
			refID := course.ID
			result, err := s.granter.Apply(ctx, tx, user, course.XPReward, enums.XPReasonCourseReward, &refID)
			if err != nil {
				return err
			}
			outcome.Progression = &result
		}

		certificate := &models.Certificate{
			ID:               uuid.New(),
			UserID:           userID,
			CourseID:         courseID,
			StudentName:      user.Name,
			CourseTitle:      course.Title,
			IssuedOn:         completedAt.Format(issuedOnFormat),
			VerificationCode: newVerificationCode(),
		}
		if err := repo.CreateCertificate(ctx, certificate); err != nil {
			return err
		}
		outcome.Certificate = certificate

		return s.noteRepo.WithTx(tx).Create(ctx,
			notifications.NewCourseCompleted(userID, course.Title, course.XPReward))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist lesson completion")
	}

	if outcome.CourseCompleted {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id":   userID,
			"course_id": courseID,
		})
		s.logg.Info(logCtx, "course completed")
	}
	return outcome, nil
}

func (s *service) ListCertificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	certificates, err := s.repo.ListCertificates(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list certificates")
	}
	return certificates, nil
}

func (s *service) VerifyCertificate(ctx context.Context, code string) (*models.Certificate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification code required")
	}
	certificate, err := s.repo.FindCertificateByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}
	if certificate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
	}
	return certificate, nil
}

func newVerificationCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return strings.ToUpper(uuid.NewString()[:16])
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
