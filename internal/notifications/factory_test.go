package notifications

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/brightpath/academy-backend/pkg/enums"
)

func TestNew_StartsUnread(t *testing.T) {
	userID := uuid.New()
	note := New(userID, enums.NotificationKindInfo, "Title", "Message")

	if note.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if note.UserID != userID {
		t.Fatalf("user = %s, want %s", note.UserID, userID)
	}
	if note.ReadAt != nil {
		t.Fatal("new notifications must start unread")
	}
}

func TestFactory_Kinds(t *testing.T) {
	userID := uuid.New()

	if got := NewLevelUp(userID, 3).Kind; got != enums.NotificationKindLevelUp {
		t.Fatalf("level up kind = %s", got)
	}
	if got := NewLevelDown(userID, 2).Kind; got != enums.NotificationKindInfo {
		t.Fatalf("level down kind = %s", got)
	}
	if got := NewPlanWarning(userID, 3).Kind; got != enums.NotificationKindWarning {
		t.Fatalf("plan warning kind = %s", got)
	}
	if got := NewPlanExpired(userID).Kind; got != enums.NotificationKindError {
		t.Fatalf("plan expired kind = %s", got)
	}
	if got := NewDailyReward(userID, 100).Kind; got != enums.NotificationKindSuccess {
		t.Fatalf("daily reward kind = %s", got)
	}
}

func TestFactory_MessagesCarryAmounts(t *testing.T) {
	userID := uuid.New()

	if msg := NewDailyReward(userID, 150).Message; !strings.Contains(msg, "150") {
		t.Fatalf("daily reward message missing amount: %q", msg)
	}
	if msg := NewPlanWarning(userID, 3).Message; !strings.Contains(msg, "3 days") {
		t.Fatalf("plan warning message missing days: %q", msg)
	}
	if msg := NewCourseCompleted(userID, "Go Basics", 500).Message; !strings.Contains(msg, `"Go Basics"`) {
		t.Fatalf("course message missing title: %q", msg)
	}
	if msg := NewLootBoxItem(userID, "Arcade Token").Message; !strings.Contains(msg, "Arcade Token") {
		t.Fatalf("loot message missing item: %q", msg)
	}
}
