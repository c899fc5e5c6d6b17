package subscription

import (
	"time"

	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

// DefaultWarnWindowDays is how close to expiry the renewal warning fires.
const DefaultWarnWindowDays = 7

// Assessment is the outcome of evaluating a user's plan at a point in time.
// ShouldExpire and ShouldWarn are transition signals; the caller persists the
// corresponding side effects so re-evaluating an unchanged user stays silent.
type Assessment struct {
	Active        bool `json:"active"`
	ShouldExpire  bool `json:"should_expire"`
	ShouldWarn    bool `json:"should_warn"`
	DaysRemaining int  `json:"days_remaining"`
}

// Evaluate decides whether paid access is currently valid and whether the
// expiry transition or the renewal warning should fire. Admin is always
// active. A paid tier without an expiry is unlimited; a nope role is inactive
// no matter what.
func Evaluate(user *models.User, now time.Time, warnWindowDays int) Assessment {
	if user == nil {
		return Assessment{}
	}
	if warnWindowDays <= 0 {
		warnWindowDays = DefaultWarnWindowDays
	}

	if user.Role == enums.UserRoleAdmin {
		return Assessment{Active: true}
	}
	if !user.Role.IsPaidTier() {
		return Assessment{Active: false}
	}
	if user.PlanExpires == nil {
		return Assessment{Active: true}
	}

	remaining := user.PlanExpires.Sub(now)
	if remaining <= 0 {
		return Assessment{Active: false, ShouldExpire: true}
	}

	days := int((remaining + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	assessment := Assessment{Active: true, DaysRemaining: days}
	if days <= warnWindowDays && !user.NotifiedExpiring {
		assessment.ShouldWarn = true
	}
	return assessment
}
