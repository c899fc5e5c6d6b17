package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is issued once per completed course. Student name and course
// title are denormalized so the record stays readable if either changes later.
type Certificate struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_user_course"`
	CourseID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificate_user_course"`
	StudentName      string    `gorm:"type:text;not null"`
	CourseTitle      string    `gorm:"type:text;not null"`
	IssuedOn         string    `gorm:"column:issued_on;type:text;not null"`
	VerificationCode string    `gorm:"column:verification_code;type:text;not null;uniqueIndex"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
