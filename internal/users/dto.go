package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID               uuid.UUID      `json:"id"`
	Email            string         `json:"email"`
	Name             string         `json:"name"`
	Role             enums.UserRole `json:"role"`
	XP               int            `json:"xp"`
	Level            int            `json:"level"`
	XPBoostUntil     *time.Time     `json:"xp_boost_until,omitempty"`
	PlanExpires      *time.Time     `json:"plan_expires,omitempty"`
	NotifiedExpiring bool           `json:"notified_expiring"`
	LastDailyClaim   *string        `json:"last_daily_claim,omitempty"`
	IsBanned         bool           `json:"is_banned"`
	MutedUntil       *time.Time     `json:"muted_until,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// FromModel maps the persistence model to the transport shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		XP:               u.XP,
		Level:            u.Level,
		XPBoostUntil:     u.XPBoostUntil,
		PlanExpires:      u.PlanExpires,
		NotifiedExpiring: u.NotifiedExpiring,
		LastDailyClaim:   u.LastDailyClaim,
		IsBanned:         u.IsBanned,
		MutedUntil:       u.MutedUntil,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
