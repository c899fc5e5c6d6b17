package courses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath/academy-backend/pkg/db/models"
)

// Repository exposes persistence helpers for courses, lessons, per-user
// progress, and certificates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListCourses(ctx context.Context) ([]models.Course, error)
	FindCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	FindLesson(ctx context.Context, courseID, lessonID uuid.UUID) (*models.Lesson, error)
	CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error)

	FindProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error)
	CreateProgress(ctx context.Context, progress *models.CourseProgress) error
	UpdateProgressFields(ctx context.Context, progressID uuid.UUID, fields map[string]any) error

	// InsertLessonCompletion adds the lesson to the user's completed set.
	// Returns false when the lesson was already in the set.
	InsertLessonCompletion(ctx context.Context, completion *models.LessonCompletion) (bool, error)
	CountLessonCompletions(ctx context.Context, userID, courseID uuid.UUID) (int64, error)

	CreateCertificate(ctx context.Context, certificate *models.Certificate) error
	ListCertificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
	FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a courses repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repositoryImpl) FindCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repositoryImpl) FindLesson(ctx context.Context, courseID, lessonID uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.WithContext(ctx).
		First(&lesson, "id = ? AND course_id = ?", lessonID, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *repositoryImpl) CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) FindProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *repositoryImpl) CreateProgress(ctx context.Context, progress *models.CourseProgress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

func (r *repositoryImpl) UpdateProgressFields(ctx context.Context, progressID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.CourseProgress{}).
		Where("id = ?", progressID).
		Updates(fields).Error
}

func (r *repositoryImpl) InsertLessonCompletion(ctx context.Context, completion *models.LessonCompletion) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(completion)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CountLessonCompletions(ctx context.Context, userID, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LessonCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreateCertificate(ctx context.Context, certificate *models.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}

func (r *repositoryImpl) ListCertificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	var certificates []models.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&certificates).Error
	if err != nil {
		return nil, err
	}
	return certificates, nil
}

func (r *repositoryImpl) FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.db.WithContext(ctx).
		First(&certificate, "verification_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}
