package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseStatus enum values
const (
	StatusDraft       = "DRAFT"
	StatusPending     = "PENDING"
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
	StatusPublished   = "PUBLISHED"
	StatusArchived    = "ARCHIVED"
	StatusSuspended   = "SUSPENDED"
)

// CourseLevel enum values
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

// ValidationResult is the outcome of the last readiness check, overwritten on
// every validation run.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Score    int      `json:"score"`
}

// ReviewFeedback is the last reviewer decision payload (approve or reject),
// overwritten on each new decision.
type ReviewFeedback struct {
	ReviewerID      uint           `json:"reviewer_id"`
	ReviewerName    string         `json:"reviewer_name"`
	CriterionScores map[string]int `json:"criterion_scores"`
	Strengths       []string       `json:"strengths"`
	Improvements    []string       `json:"improvements"`
	OverallScore    int            `json:"overall_score"`
	ReviewedAt      string         `json:"reviewed_at"`
}

// Course is the authoritative record of one course's authoring state
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description" gorm:"type:text"`
	Category     string `json:"category"`
	Level        string `json:"level"` // BEGINNER, INTERMEDIATE, ADVANCED
	AuthorID     uint   `json:"author_id" gorm:"index;not null"`
	Status       string `json:"status" gorm:"default:'DRAFT';type:varchar(20)"`
	QualityScore int    `json:"quality_score" gorm:"default:0"` // 0-100, set by last validation or review
	ThumbnailURL string `json:"thumbnail_url"`

	Validation       datatypes.JSONType[ValidationResult] `json:"validation"`
	ApprovalFeedback datatypes.JSONType[ReviewFeedback]   `json:"approval_feedback"`
	RejectionReason  string                               `json:"rejection_reason" gorm:"type:text"`

	RatingAvg   float64 `json:"rating_avg" gorm:"default:0"`
	RatingCount int     `json:"rating_count" gorm:"default:0"`
	IsDeleted   bool    `gorm:"default:false"`

	// Relations
	Sections []Section         `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
	History  []WorkflowHistory `gorm:"foreignKey:CourseID" json:"history,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
