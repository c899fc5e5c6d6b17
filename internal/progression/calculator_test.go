package progression

import (
	"testing"
	"time"
)

func defaultTable() LevelTable {
	return LevelTable{
		{Level: 1, XPRequired: 0},
		{Level: 2, XPRequired: 1000},
		{Level: 3, XPRequired: 2639},
		{Level: 4, XPRequired: 4711},
	}
}

func TestLevelFor_Boundaries(t *testing.T) {
	table := defaultTable()

	cases := []struct {
		xp   int
		want int
	}{
		{xp: 0, want: 1},
		{xp: 999, want: 1},
		{xp: 1000, want: 2},
		{xp: 2638, want: 2},
		{xp: 2639, want: 3},
		{xp: 99999, want: 4},
	}
	for _, tc := range cases {
		got, ok := table.LevelFor(tc.xp)
		if !ok {
			t.Fatalf("LevelFor(%d) not ok", tc.xp)
		}
		if got != tc.want {
			t.Fatalf("LevelFor(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestLevelFor_EmptyTable(t *testing.T) {
	if _, ok := (LevelTable{}).LevelFor(500); ok {
		t.Fatal("expected ok=false for empty table")
	}
}

func TestLevelFor_UnsortedInput(t *testing.T) {
	table := LevelTable{
		{Level: 3, XPRequired: 2639},
		{Level: 1, XPRequired: 0},
		{Level: 2, XPRequired: 1000},
	}
	got, ok := table.LevelFor(1500)
	if !ok || got != 2 {
		t.Fatalf("LevelFor(1500) = %d ok=%v, want 2 true", got, ok)
	}
}

func TestApplyDelta_LevelUp(t *testing.T) {
	now := time.Now()
	result := ApplyDelta(State{XP: 900, Level: 1}, 200, defaultTable(), now)

	if result.TotalXP != 1100 {
		t.Fatalf("total = %d, want 1100", result.TotalXP)
	}
	if result.NewLevel != 2 || !result.LeveledUp || result.LeveledDown {
		t.Fatalf("unexpected level transition: %+v", result)
	}
	if result.AppliedDelta != 200 {
		t.Fatalf("applied = %d, want 200", result.AppliedDelta)
	}
}

func TestApplyDelta_BoostDoublesPositiveOnly(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Hour)
	state := State{XP: 1000, Level: 2, BoostUntil: &until}

	gained := ApplyDelta(state, 100, defaultTable(), now)
	if gained.AppliedDelta != 200 || gained.TotalXP != 1200 {
		t.Fatalf("boosted gain: %+v", gained)
	}

	spent := ApplyDelta(state, -100, defaultTable(), now)
	if spent.AppliedDelta != -100 || spent.TotalXP != 900 {
		t.Fatalf("spend must not double: %+v", spent)
	}
}

func TestApplyDelta_ExpiredBoostIsInert(t *testing.T) {
	now := time.Now()
	until := now.Add(-time.Minute)
	result := ApplyDelta(State{XP: 0, Level: 1, BoostUntil: &until}, 100, defaultTable(), now)
	if result.AppliedDelta != 100 {
		t.Fatalf("applied = %d, want 100", result.AppliedDelta)
	}
}

func TestApplyDelta_ClampsAtZero(t *testing.T) {
	result := ApplyDelta(State{XP: 50, Level: 1}, -200, defaultTable(), time.Now())
	if result.TotalXP != 0 {
		t.Fatalf("total = %d, want 0", result.TotalXP)
	}
}

func TestApplyDelta_SpendCanDropLevel(t *testing.T) {
	result := ApplyDelta(State{XP: 1200, Level: 2}, -300, defaultTable(), time.Now())
	if result.TotalXP != 900 {
		t.Fatalf("total = %d, want 900", result.TotalXP)
	}
	if result.NewLevel != 1 || !result.LeveledDown || result.LeveledUp {
		t.Fatalf("expected drop to level 1: %+v", result)
	}
}

func TestApplyDelta_EmptyTableKeepsLevel(t *testing.T) {
	result := ApplyDelta(State{XP: 100, Level: 7}, 50, LevelTable{}, time.Now())
	if result.NewLevel != 7 || result.LeveledUp || result.LeveledDown {
		t.Fatalf("level must stay with empty table: %+v", result)
	}
}

func TestNormalize_DoesNotMutate(t *testing.T) {
	table := LevelTable{
		{Level: 2, XPRequired: 1000},
		{Level: 1, XPRequired: 0},
	}
	_ = table.Normalize()
	if table[0].Level != 2 {
		t.Fatal("Normalize must not mutate the receiver")
	}
}
