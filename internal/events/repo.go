package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath/academy-backend/pkg/db/models"
)

// Repository exposes persistence helpers for calendar events and registrations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListEvents(ctx context.Context) ([]models.CalendarEvent, error)
	FindEvent(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error)
	CreateEvent(ctx context.Context, event *models.CalendarEvent) error

	// InsertRegistration adds the user to the event. Returns false when the
	// user was already registered.
	InsertRegistration(ctx context.Context, registration *models.EventRegistration) (bool, error)
	FindRegistration(ctx context.Context, id uuid.UUID) (*models.EventRegistration, error)
	ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.EventRegistration, error)
	UpdateRegistrationFields(ctx context.Context, registrationID uuid.UUID, fields map[string]any) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an events repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	if err := r.db.WithContext(ctx).Order("starts_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repositoryImpl) FindEvent(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repositoryImpl) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) InsertRegistration(ctx context.Context, registration *models.EventRegistration) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(registration)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindRegistration(ctx context.Context, id uuid.UUID) (*models.EventRegistration, error) {
	var registration models.EventRegistration
	err := r.db.WithContext(ctx).First(&registration, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *repositoryImpl) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.EventRegistration, error) {
	var registrations []models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *repositoryImpl) UpdateRegistrationFields(ctx context.Context, registrationID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.EventRegistration{}).
		Where("id = ?", registrationID).
		Updates(fields).Error
}
