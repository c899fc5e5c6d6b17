package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

// New builds an unread notification record. All notification rows are created
// here so kinds and shapes stay uniform.
func New(userID uuid.UUID, kind enums.NotificationKind, title, message string) *models.Notification {
	return &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
	}
}

// NewLevelUp announces a level gain.
func NewLevelUp(userID uuid.UUID, level int) *models.Notification {
	return New(userID, enums.NotificationKindLevelUp,
		"Level up!",
		fmt.Sprintf("You reached level %d. Keep going!", level))
}

// NewLevelDown announces a level drop after spending XP.
func NewLevelDown(userID uuid.UUID, level int) *models.Notification {
	return New(userID, enums.NotificationKindInfo,
		"Level changed",
		fmt.Sprintf("Your purchase moved you back to level %d.", level))
}

// NewDailyReward confirms a daily claim.
func NewDailyReward(userID uuid.UUID, xp int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Daily reward claimed",
		fmt.Sprintf("You earned %d XP. Come back tomorrow!", xp))
}

// NewPurchase confirms a shop purchase.
func NewPurchase(userID uuid.UUID, itemName string, price int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Purchase complete",
		fmt.Sprintf("You bought %s for %d XP.", itemName, price))
}

// NewBoostActivated confirms an XP boost consumption.
func NewBoostActivated(userID uuid.UUID, hours int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"XP boost active",
		fmt.Sprintf("All XP gains are doubled for the next %d hours.", hours))
}

// NewLootBoxXP announces a loot box that rolled an XP grant.
func NewLootBoxXP(userID uuid.UUID, xp int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Loot box opened",
		fmt.Sprintf("The box contained %d XP!", xp))
}

// NewLootBoxItem announces a loot box that rolled an artifact.
func NewLootBoxItem(userID uuid.UUID, itemName string) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Loot box opened",
		fmt.Sprintf("The box contained: %s!", itemName))
}

// NewCourseCompleted celebrates a finished course.
func NewCourseCompleted(userID uuid.UUID, courseTitle string, xp int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Course completed",
		fmt.Sprintf("You finished %q and earned %d XP. Your certificate is ready.", courseTitle, xp))
}

// NewQuizPassed celebrates a first-time quiz pass.
func NewQuizPassed(userID uuid.UUID, quizTitle string, xp int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Quiz passed",
		fmt.Sprintf("You passed %q and earned %d XP.", quizTitle, xp))
}

// NewChallengeCompleted celebrates a completed challenge.
func NewChallengeCompleted(userID uuid.UUID, title string, xp int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Challenge completed",
		fmt.Sprintf("You completed %q and earned %d XP.", title, xp))
}

// NewEventApproved tells the user their event registration was approved.
func NewEventApproved(userID uuid.UUID, eventTitle string, xp int) *models.Notification {
	message := fmt.Sprintf("Your registration for %q was approved.", eventTitle)
	if xp > 0 {
		message = fmt.Sprintf("Your registration for %q was approved. You earned %d XP.", eventTitle, xp)
	}
	return New(userID, enums.NotificationKindSuccess, "Event registration approved", message)
}

// NewBonusClaimed confirms a bonus submission payout.
func NewBonusClaimed(userID uuid.UUID, taskTitle string, xp int) *models.Notification {
	return New(userID, enums.NotificationKindSuccess,
		"Bonus XP claimed",
		fmt.Sprintf("You claimed %d XP for %q.", xp, taskTitle))
}

// NewPlanWarning warns about an expiring plan. daysRemaining is the ceiling of
// the time left in whole days and is used verbatim in the message.
func NewPlanWarning(userID uuid.UUID, daysRemaining int) *models.Notification {
	return New(userID, enums.NotificationKindWarning,
		"Plan ending soon",
		fmt.Sprintf("Your plan expires in %d days. Renew to keep your access.", daysRemaining))
}

// NewPlanExpired tells the user their paid access ended.
func NewPlanExpired(userID uuid.UUID) *models.Notification {
	return New(userID, enums.NotificationKindError,
		"Plan expired",
		"Your plan has expired. Renew to regain access to your courses.")
}
