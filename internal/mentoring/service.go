package mentoring

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/internal/access"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
	pkgerrors "github.com/brightpath/academy-backend/pkg/errors"
	"github.com/brightpath/academy-backend/pkg/logger"
)

// Service carries mentor listings and session bookings.
type Service interface {
	ListMentors(ctx context.Context) ([]models.Mentor, error)
	ListBookings(ctx context.Context, userID uuid.UUID) ([]models.MentoringBooking, error)
	// BookSession creates a pending booking. It burns a monthly free slot
	// when the role still has one this calendar month; bookings past the
	// allowance are created paid.
	BookSession(ctx context.Context, userID, mentorID uuid.UUID, scheduledAt time.Time) (*BookingResult, error)
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) error
	// ConfirmBooking / RejectBooking are admin transitions on pending rows.
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID) error
	RejectBooking(ctx context.Context, bookingID uuid.UUID) error
	CreateMentor(ctx context.Context, input MentorInput) (*models.Mentor, error)
}

// BookingResult reports a created booking and the remaining free slots.
type BookingResult struct {
	Booking        models.MentoringBooking `json:"booking"`
	FreeSlotUsed   bool                    `json:"free_slot_used"`
	FreeSlotsLeft  int64                   `json:"free_slots_left"`
	UnlimitedSlots bool                    `json:"unlimited_slots"`
}

// MentorInput is the admin create payload.
type MentorInput struct {
	Name string         `json:"name" validate:"required,min=1,max=120"`
	Bio  string         `json:"bio" validate:"max=2000"`
	Tier enums.UserRole `json:"tier" validate:"required"`
}

// ServiceParams configure the mentoring service.
type ServiceParams struct {
	Logger     *logger.Logger
	Repo       Repository
	UserRepo   users.Repository
	Allowances access.Allowances
	Now        func() time.Time
}

type service struct {
	logg       *logger.Logger
	repo       Repository
	userRepo   users.Repository
	allowances access.Allowances
	now        func() time.Time
}

// NewService wires mentoring dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mentoring repository required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:       params.Logger,
		repo:       params.Repo,
		userRepo:   params.UserRepo,
		allowances: params.Allowances,
		now:        now,
	}, nil
}

func (s *service) ListMentors(ctx context.Context) ([]models.Mentor, error) {
	mentors, err := s.repo.ListMentors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list mentors")
	}
	return mentors, nil
}

func (s *service) ListBookings(ctx context.Context, userID uuid.UUID) ([]models.MentoringBooking, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	bookings, err := s.repo.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return bookings, nil
}

func (s *service) BookSession(ctx context.Context, userID, mentorID uuid.UUID, scheduledAt time.Time) (*BookingResult, error) {
	if userID == uuid.Nil || mentorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and mentor ids required")
	}
	if scheduledAt.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session time must be in the future")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	mentor, err := s.repo.FindMentor(ctx, mentorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mentor")
	}
	if mentor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "mentor not found")
	}
	if !user.Role.AtLeast(mentor.Tier) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "mentor requires a higher tier")
	}

	slots, unlimited := access.FreeSlots(user.Role, s.allowances)
	free := unlimited
	var left int64
	if !unlimited && slots > 0 {
		from, to := access.MonthWindow(s.now())
		used, err := s.repo.CountFreeBookings(ctx, userID, from, to)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count free bookings")
		}
		left = int64(slots) - used
		if left > 0 {
			free = true
			left--
		} else {
			left = 0
		}
	}

	booking := &models.MentoringBooking{
		ID:          uuid.New(),
		UserID:      userID,
		MentorID:    mentorID,
		ScheduledAt: scheduledAt.UTC(),
		Status:      enums.BookingStatusPending,
		IsFree:      free,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist booking")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":   userID,
		"mentor_id": mentorID,
		"free":      free,
	})
	s.logg.Info(logCtx, "mentoring session booked")
	return &BookingResult{
		Booking:        *booking,
		FreeSlotUsed:   free && !unlimited,
		FreeSlotsLeft:  left,
		UnlimitedSlots: unlimited,
	}, nil
}

func (s *service) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) error {
	if userID == uuid.Nil || bookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and booking ids required")
	}

	booking, err := s.repo.FindBooking(ctx, bookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking == nil || booking.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if !booking.Status.CountsTowardAllowance() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is already closed")
	}

	fields := map[string]any{"status": enums.BookingStatusCancelled}
	if err := s.repo.UpdateBookingFields(ctx, booking.ID, fields); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cancellation")
	}
	return nil
}

func (s *service) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) error {
	return s.moveBooking(ctx, bookingID, enums.BookingStatusConfirmed)
}

func (s *service) RejectBooking(ctx context.Context, bookingID uuid.UUID) error {
	return s.moveBooking(ctx, bookingID, enums.BookingStatusRejected)
}

func (s *service) moveBooking(ctx context.Context, bookingID uuid.UUID, status enums.BookingStatus) error {
	if bookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	booking, err := s.repo.FindBooking(ctx, bookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if booking.Status != enums.BookingStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not pending")
	}

	if err := s.repo.UpdateBookingFields(ctx, booking.ID, map[string]any{"status": status}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist booking status")
	}
	return nil
}

func (s *service) CreateMentor(ctx context.Context, input MentorInput) (*models.Mentor, error) {
	if !input.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier")
	}
	mentor := &models.Mentor{
		ID:   uuid.New(),
		Name: input.Name,
		Bio:  input.Bio,
		Tier: input.Tier,
	}
	if err := s.repo.CreateMentor(ctx, mentor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create mentor")
	}
	return mentor, nil
}
