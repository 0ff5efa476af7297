package course

import (
	"gorm.io/gorm"
)

// WorkflowAction enum values
const (
	ActionCreated       = "CREATED"
	ActionSubmitted     = "SUBMITTED"
	ActionReviewStarted = "REVIEW_STARTED"
	ActionApproved      = "APPROVED"
	ActionRejected      = "REJECTED"
	ActionPublished     = "PUBLISHED"
	ActionArchived      = "ARCHIVED"
	ActionSuspended     = "SUSPENDED"
	ActionReinstated    = "REINSTATED"
	ActionReopened      = "REOPENED"
)

// ActorRole enum values
const (
	RoleUser   = "USER"
	RoleAuthor = "AUTHOR"
	RoleAdmin  = "ADMIN"
	RoleSystem = "SYSTEM"
)

// WorkflowHistory is the append-only audit log for course lifecycle actions.
// Rows are only ever inserted, never updated.
type WorkflowHistory struct {
	gorm.Model
	CourseID        uint   `json:"course_id" gorm:"not null;index"`
	Action          string `json:"action" gorm:"not null;type:varchar(30)"`
	FromStatus      string `json:"from_status" gorm:"type:varchar(20)"`
	ToStatus        string `json:"to_status" gorm:"type:varchar(20)"`
	PerformedBy     uint   `json:"performed_by" gorm:"not null"`
	PerformedByRole string `json:"performed_by_role" gorm:"type:varchar(10)"` // AUTHOR, ADMIN, SYSTEM
	Reason          string `json:"reason" gorm:"type:text"`
	Metadata        string `json:"metadata" gorm:"type:jsonb"` // JSON for additional info
}

func (WorkflowHistory) TableName() string {
	return "workflow_history"
}

// CourseVersion is a frozen snapshot of a course taken at publication time
type CourseVersion struct {
	gorm.Model
	CourseID      uint   `json:"course_id" gorm:"not null;index"`
	VersionNumber int    `json:"version_number" gorm:"not null"`
	Snapshot      string `json:"snapshot" gorm:"type:jsonb"` // marshaled course + structure
	PublishedBy   uint   `json:"published_by"`
	QualityScore  int    `json:"quality_score" gorm:"default:0"`
}

func (CourseVersion) TableName() string {
	return "course_versions"
}
