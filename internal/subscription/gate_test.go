package subscription

import (
	"testing"
	"time"

	"github.com/brightpath/academy-backend/pkg/db/models"
	"github.com/brightpath/academy-backend/pkg/enums"
)

func TestEvaluate_AdminAlwaysActive(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	user := &models.User{Role: enums.UserRoleAdmin, PlanExpires: &expired}

	got := Evaluate(user, time.Now(), DefaultWarnWindowDays)
	if !got.Active || got.ShouldExpire || got.ShouldWarn {
		t.Fatalf("admin must stay active: %+v", got)
	}
}

func TestEvaluate_UnpaidTierInactive(t *testing.T) {
	for _, role := range []enums.UserRole{enums.UserRoleNope, enums.UserRoleStudent} {
		got := Evaluate(&models.User{Role: role}, time.Now(), DefaultWarnWindowDays)
		if got.Active || got.ShouldExpire {
			t.Fatalf("role %s: %+v", role, got)
		}
	}
}

func TestEvaluate_PaidTierWithoutExpiryIsUnlimited(t *testing.T) {
	got := Evaluate(&models.User{Role: enums.UserRolePremium}, time.Now(), DefaultWarnWindowDays)
	if !got.Active || got.ShouldWarn || got.ShouldExpire {
		t.Fatalf("unlimited plan: %+v", got)
	}
}

func TestEvaluate_ExpiredPlanSignalsTransition(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Minute)
	got := Evaluate(&models.User{Role: enums.UserRoleVIP, PlanExpires: &expired}, now, DefaultWarnWindowDays)
	if got.Active || !got.ShouldExpire {
		t.Fatalf("expected expiry signal: %+v", got)
	}
}

func TestEvaluate_ExactExpiryInstantExpires(t *testing.T) {
	now := time.Now()
	got := Evaluate(&models.User{Role: enums.UserRolePremium, PlanExpires: &now}, now, DefaultWarnWindowDays)
	if got.Active || !got.ShouldExpire {
		t.Fatalf("remaining == 0 must expire: %+v", got)
	}
}

func TestEvaluate_DaysRemainingRoundsUp(t *testing.T) {
	now := time.Now()
	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{remaining: time.Hour, want: 1},
		{remaining: 24 * time.Hour, want: 1},
		{remaining: 24*time.Hour + time.Minute, want: 2},
		{remaining: 6*24*time.Hour + time.Hour, want: 7},
	}
	for _, tc := range cases {
		expires := now.Add(tc.remaining)
		got := Evaluate(&models.User{Role: enums.UserRolePremium, PlanExpires: &expires}, now, DefaultWarnWindowDays)
		if got.DaysRemaining != tc.want {
			t.Fatalf("remaining %v: days = %d, want %d", tc.remaining, got.DaysRemaining, tc.want)
		}
	}
}

func TestEvaluate_WarnsOnceInsideWindow(t *testing.T) {
	now := time.Now()
	expires := now.Add(3 * 24 * time.Hour)

	fresh := Evaluate(&models.User{Role: enums.UserRolePremium, PlanExpires: &expires}, now, DefaultWarnWindowDays)
	if !fresh.Active || !fresh.ShouldWarn {
		t.Fatalf("expected warning inside window: %+v", fresh)
	}

	notified := Evaluate(&models.User{Role: enums.UserRolePremium, PlanExpires: &expires, NotifiedExpiring: true}, now, DefaultWarnWindowDays)
	if notified.ShouldWarn {
		t.Fatalf("warning must not repeat: %+v", notified)
	}
}

func TestEvaluate_NoWarningOutsideWindow(t *testing.T) {
	now := time.Now()
	expires := now.Add(30 * 24 * time.Hour)
	got := Evaluate(&models.User{Role: enums.UserRoleVIP, PlanExpires: &expires}, now, DefaultWarnWindowDays)
	if got.ShouldWarn {
		t.Fatalf("no warning expected: %+v", got)
	}
}

func TestEvaluate_NilUser(t *testing.T) {
	got := Evaluate(nil, time.Now(), DefaultWarnWindowDays)
	if got.Active || got.ShouldExpire || got.ShouldWarn {
		t.Fatalf("nil user must evaluate inactive: %+v", got)
	}
}
