package access

import (
	"time"

	"github.com/brightpath/academy-backend/pkg/enums"
)

// CanView reports whether a role may see content gated at the given tier.
// The tier ladder is nope < student < premium < vip; admin passes every gate.
// Content flagged open at the student tier is visible to everyone, including
// nope, so the catalog can show teasers to logged-out-equivalent accounts.
func CanView(role, tier enums.UserRole, open bool) bool {
	if role.AtLeast(tier) {
		return true
	}
	return open && tier == enums.UserRoleStudent
}

// Allowances holds the per-role monthly free mentoring slots.
type Allowances struct {
	Premium int
	VIP     int
}

// FreeSlots returns the monthly free-booking allowance for a role. unlimited
// is true for admin; roles below premium get none.
func FreeSlots(role enums.UserRole, allow Allowances) (slots int, unlimited bool) {
	switch role {
	case enums.UserRoleAdmin:
		return 0, true
	case enums.UserRoleVIP:
		return allow.VIP, false
	case enums.UserRolePremium:
		return allow.Premium, false
	}
	return 0, false
}

// MonthWindow returns the half-open [start, end) interval of the calendar
// month containing now, in UTC. Free slots reset at month boundaries.
func MonthWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
