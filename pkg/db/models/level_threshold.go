package models

// LevelThreshold is one row of the externally configured level table. The
// table is read ascending by level; a user's level is the largest level whose
// threshold is at or below their XP total.
type LevelThreshold struct {
	Level      int `gorm:"column:level;primaryKey"`
	XPRequired int `gorm:"column:xp_required;not null"`
}
