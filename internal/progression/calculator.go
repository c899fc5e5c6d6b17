package progression

import (
	"sort"
	"time"

	"github.com/brightpath/academy-backend/pkg/db/models"
)

// LevelTable is the ascending list of level thresholds a user's level is
// derived from. It is passed in explicitly; the calculator reads no shared
// state.
type LevelTable []models.LevelThreshold

// Normalize returns the table sorted ascending by level.
func (t LevelTable) Normalize() LevelTable {
	sorted := make(LevelTable, len(t))
	copy(sorted, t)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })
	return sorted
}

// LevelFor returns the largest level whose threshold is at or below totalXP.
// ok is false when the table is empty.
func (t LevelTable) LevelFor(totalXP int) (int, bool) {
	if len(t) == 0 {
		return 0, false
	}
	sorted := t.Normalize()
	level := sorted[0].Level
	for _, row := range sorted {
		if totalXP >= row.XPRequired {
			level = row.Level
		} else {
			break
		}
	}
	return level, true
}

// State is the slice of the user aggregate the calculator needs.
type State struct {
	XP         int
	Level      int
	BoostUntil *time.Time
}

// Result describes the outcome of applying a signed XP delta.
type Result struct {
	TotalXP      int
	NewLevel     int
	LeveledUp    bool
	LeveledDown  bool
	AppliedDelta int
}

// ApplyDelta computes the new XP total and level for a signed delta. Active
// boosts double positive deltas only; spending is never discounted. XP clamps
// at zero. With an empty table the level stays unchanged rather than failing.
// Level may drop when spending pushes XP below a previous threshold; that is
// intentional, not a bug.
func ApplyDelta(state State, delta int, table LevelTable, now time.Time) Result {
	applied := delta
	if delta > 0 && state.BoostUntil != nil && state.BoostUntil.After(now) {
		applied = delta * 2
	}

	total := state.XP + applied
	if total < 0 {
		total = 0
	}

	newLevel := state.Level
	if level, ok := table.LevelFor(total); ok {
		newLevel = level
	}

	return Result{
		TotalXP:      total,
		NewLevel:     newLevel,
		LeveledUp:    newLevel > state.Level,
		LeveledDown:  newLevel < state.Level,
		AppliedDelta: applied,
	}
}
