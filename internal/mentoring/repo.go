package mentoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

// Repository exposes persistence helpers for mentors and bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListMentors(ctx context.Context) ([]models.Mentor, error)
	FindMentor(ctx context.Context, id uuid.UUID) (*models.Mentor, error)
	CreateMentor(ctx context.Context, mentor *models.Mentor) error

	CreateBooking(ctx context.Context, booking *models.MentoringBooking) error
	FindBooking(ctx context.Context, id uuid.UUID) (*models.MentoringBooking, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]models.MentoringBooking, error)
	// CountFreeBookings counts the user's free-slot bookings created inside
	// [from, to) that still hold a slot. Rejected and cancelled give it back.
	CountFreeBookings(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
	UpdateBookingFields(ctx context.Context, bookingID uuid.UUID, fields map[string]any) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a mentoring repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListMentors(ctx context.Context) ([]models.Mentor, error) {
	var mentors []models.Mentor
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&mentors).Error; err != nil {
		return nil, err
	}
	return mentors, nil
}

func (r *repositoryImpl) FindMentor(ctx context.Context, id uuid.UUID) (*models.Mentor, error) {
	var mentor models.Mentor
	err := r.db.WithContext(ctx).First(&mentor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mentor, nil
}

func (r *repositoryImpl) CreateMentor(ctx context.Context, mentor *models.Mentor) error {
	return r.db.WithContext(ctx).Create(mentor).Error
}

func (r *repositoryImpl) CreateBooking(ctx context.Context, booking *models.MentoringBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repositoryImpl) FindBooking(ctx context.Context, id uuid.UUID) (*models.MentoringBooking, error) {
	var booking models.MentoringBooking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repositoryImpl) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]models.MentoringBooking, error) {
	var bookings []models.MentoringBooking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repositoryImpl) CountFreeBookings(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MentoringBooking{}).
		Where("user_id = ? AND is_free = ?", userID, true).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status NOT IN ?", []enums.BookingStatus{enums.BookingStatusRejected, enums.BookingStatusCancelled}).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) UpdateBookingFields(ctx context.Context, bookingID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.MentoringBooking{}).
		Where("id = ?", bookingID).
		Updates(fields).Error
}
