package course

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus enum values
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentDropped   = "DROPPED"
)

// Enrollment links a learner to a course. Progress here is a denormalized
// percentage kept in step with the progress document by the consistency
// engine, which is its only writer.
type Enrollment struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"index:idx_enroll_user_course,unique;not null"`
	CourseID    uint       `json:"course_id" gorm:"index:idx_enroll_user_course,unique;not null"`
	Status      string     `json:"status" gorm:"default:'ACTIVE';type:varchar(20)"` // ACTIVE, COMPLETED, DROPPED
	Progress    int        `json:"progress" gorm:"default:0"`                       // 0-100
	CompletedAt *time.Time `json:"completed_at"`
	IsDeleted   bool       `gorm:"default:false"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
