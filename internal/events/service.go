package events

import (
	"context"
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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service carries calendar event registration and admin approval.
type Service interface {
	ListEvents(ctx context.Context, role enums.UserRole) ([]models.CalendarEvent, error)
	// Register adds the user to the event once; re-registering conflicts.
	Register(ctx context.Context, userID, eventID uuid.UUID) (*models.EventRegistration, error)
	// ApproveRegistration is the admin transition registered -> approved.
	// The status move and the event reward land in one transaction.
	ApproveRegistration(ctx context.Context, registrationID uuid.UUID) (*ApprovalResult, error)
	// RejectRegistration is the admin transition registered -> rejected.
	RejectRegistration(ctx context.Context, registrationID uuid.UUID) error
	ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.EventRegistration, error)
	CreateEvent(ctx context.Context, input EventInput) (*models.CalendarEvent, error)
}

// ApprovalResult describes an approved registration.
type ApprovalResult struct {
	Registration models.EventRegistration `json:"registration"`
	Progression  *progression.Result      `json:"progression,omitempty"`
}

// EventInput is the admin create payload.
type EventInput struct {
	Title    string         `json:"title" validate:"required,min=1,max=200"`
	Tier     enums.UserRole `json:"tier" validate:"required"`
	StartsAt time.Time      `json:"starts_at" validate:"required"`
	XPReward int            `json:"xp_reward" validate:"gte=0"`
}

// ServiceParams configure the events service.
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

// NewService wires events dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "events repository required")
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

func (s *service) ListEvents(ctx context.Context, role enums.UserRole) ([]models.CalendarEvent, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}

	visible := make([]models.CalendarEvent, 0, len(events))
	for _, event := range events {
		if access.CanView(role, event.Tier, false) {
			visible = append(visible, event)
		}
	}
	return visible, nil
}

func (s *service) Register(ctx context.Context, userID, eventID uuid.UUID) (*models.EventRegistration, error) {
	if userID == uuid.Nil || eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and event ids required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	event, err := s.repo.FindEvent(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	if !access.CanView(user.Role, event.Tier, false) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "event requires a higher tier")
	}

	registration := &models.EventRegistration{
		ID:      uuid.New(),
		EventID: eventID,
		UserID:  userID,
		Status:  enums.RegistrationStatusRegistered,
	}
	inserted, err := s.repo.InsertRegistration(ctx, registration)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist registration")
	}
	if !inserted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "already registered for this event")
	}
	return registration, nil
}

func (s *service) ApproveRegistration(ctx context.Context, registrationID uuid.UUID) (*ApprovalResult, error) {
	if registrationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registration id required")
	}

	registration, err := s.repo.FindRegistration(ctx, registrationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registration")
	}
	if registration == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
	}
	if registration.Status != enums.RegistrationStatusRegistered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "registration is not awaiting approval")
	}

	event, err := s.repo.FindEvent(ctx, registration.EventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}

	user, err := s.userRepo.FindByID(ctx, registration.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	outcome := &ApprovalResult{}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		approvedAt := s.now().UTC()
		fields := map[string]any{
			"status":      enums.RegistrationStatusApproved,
			"approved_at": approvedAt,
		}
		if err := s.repo.WithTx(tx).UpdateRegistrationFields(ctx, registration.ID, fields); err != nil {
			return err
		}
		registration.Status = enums.RegistrationStatusApproved
		registration.ApprovedAt = &approvedAt

		if event.XPReward > 0 {
			refID := event.ID
			result, err := s.granter.Apply(ctx, tx, user, event.XPReward, enums.XPReasonEventReward, &refID)
			if err != nil {
				return err
			}
			outcome.Progression = &result
		}
		return s.noteRepo.WithTx(tx).Create(ctx,
			notifications.NewEventApproved(user.ID, event.Title, event.XPReward))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist approval")
	}

	outcome.Registration = *registration
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"registration_id": registration.ID,
		"event_id":        event.ID,
		"user_id":         user.ID,
	})
	s.logg.Info(logCtx, "event registration approved")
	return outcome, nil
}

func (s *service) RejectRegistration(ctx context.Context, registrationID uuid.UUID) error {
	if registrationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "registration id required")
	}

	registration, err := s.repo.FindRegistration(ctx, registrationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registration")
	}
	if registration == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
	}
	if registration.Status != enums.RegistrationStatusRegistered {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "registration is not awaiting approval")
	}

	fields := map[string]any{"status": enums.RegistrationStatusRejected}
	if err := s.repo.UpdateRegistrationFields(ctx, registration.ID, fields); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist rejection")
	}
	return nil
}

func (s *service) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]models.EventRegistration, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	registrations, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registrations")
	}
	return registrations, nil
}

func (s *service) CreateEvent(ctx context.Context, input EventInput) (*models.CalendarEvent, error) {
	if !input.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier")
	}
	event := &models.CalendarEvent{
		ID:       uuid.New(),
		Title:    input.Title,
		Tier:     input.Tier,
		StartsAt: input.StartsAt.UTC(),
		XPReward: input.XPReward,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return event, nil
}
