package access

import (
	"testing"
	"time"

	"github.com/brightpath/academy-backend/pkg/enums"
)

func TestCanView_TierLadder(t *testing.T) {
	cases := []struct {
		role enums.UserRole
		tier enums.UserRole
		open bool
		want bool
	}{
		{role: enums.UserRoleNope, tier: enums.UserRoleStudent, open: false, want: false},
		{role: enums.UserRoleNope, tier: enums.UserRoleStudent, open: true, want: true},
		{role: enums.UserRoleNope, tier: enums.UserRolePremium, open: true, want: false},
		{role: enums.UserRoleStudent, tier: enums.UserRoleStudent, open: false, want: true},
		{role: enums.UserRoleStudent, tier: enums.UserRoleVIP, open: false, want: false},
		{role: enums.UserRolePremium, tier: enums.UserRoleStudent, open: false, want: true},
		{role: enums.UserRolePremium, tier: enums.UserRoleVIP, open: false, want: false},
		{role: enums.UserRoleVIP, tier: enums.UserRolePremium, open: false, want: true},
		{role: enums.UserRoleAdmin, tier: enums.UserRoleVIP, open: false, want: true},
	}
	for _, tc := range cases {
		if got := CanView(tc.role, tc.tier, tc.open); got != tc.want {
			t.Fatalf("CanView(%s, %s, %v) = %v, want %v", tc.role, tc.tier, tc.open, got, tc.want)
		}
	}
}

func TestFreeSlots(t *testing.T) {
	allow := Allowances{Premium: 1, VIP: 20}

	if slots, unlimited := FreeSlots(enums.UserRoleAdmin, allow); !unlimited || slots != 0 {
		t.Fatalf("admin: slots=%d unlimited=%v", slots, unlimited)
	}
	if slots, unlimited := FreeSlots(enums.UserRoleVIP, allow); unlimited || slots != 20 {
		t.Fatalf("vip: slots=%d unlimited=%v", slots, unlimited)
	}
	if slots, unlimited := FreeSlots(enums.UserRolePremium, allow); unlimited || slots != 1 {
		t.Fatalf("premium: slots=%d unlimited=%v", slots, unlimited)
	}
	if slots, unlimited := FreeSlots(enums.UserRoleStudent, allow); unlimited || slots != 0 {
		t.Fatalf("student: slots=%d unlimited=%v", slots, unlimited)
	}
	if slots, unlimited := FreeSlots(enums.UserRoleNope, allow); unlimited || slots != 0 {
		t.Fatalf("nope: slots=%d unlimited=%v", slots, unlimited)
	}
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2026, time.March, 15, 13, 45, 0, 0, time.FixedZone("CET", 3600))
	start, end := MonthWindow(now)

	if want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("start = %v, want %v", start, want)
	}
	if want := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Fatalf("end = %v, want %v", end, want)
	}
}

func TestMonthWindow_DecemberRollsToJanuary(t *testing.T) {
	now := time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC)
	_, end := MonthWindow(now)
	if want := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Fatalf("end = %v, want %v", end, want)
	}
}
