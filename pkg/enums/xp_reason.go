package enums

import "fmt"

// XPReason tags entries in the XP event ledger with their originating operation.
type XPReason string

const (
	XPReasonDailyClaim      XPReason = "daily_claim"
	XPReasonPurchase        XPReason = "purchase"
	XPReasonLootBox         XPReason = "loot_box"
	XPReasonCourseReward    XPReason = "course_reward"
	XPReasonQuizReward      XPReason = "quiz_reward"
	XPReasonChallengeReward XPReason = "challenge_reward"
	XPReasonEventReward     XPReason = "event_reward"
	XPReasonBonusClaim      XPReason = "bonus_claim"
	XPReasonAdminGrant      XPReason = "admin_grant"
)

var validXPReasons = []XPReason{
	XPReasonDailyClaim,
	XPReasonPurchase,
	XPReasonLootBox,
	XPReasonCourseReward,
	XPReasonQuizReward,
	XPReasonChallengeReward,
	XPReasonEventReward,
	XPReasonBonusClaim,
	XPReasonAdminGrant,
}

// IsValid reports whether the value is a known XPReason.
func (x XPReason) IsValid() bool {
	for _, candidate := range validXPReasons {
		if candidate == x {
			return true
		}
	}
	return false
}

// ParseXPReason converts raw input into an XPReason.
func ParseXPReason(value string) (XPReason, error) {
	for _, candidate := range validXPReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid xp reason %q", value)
}
