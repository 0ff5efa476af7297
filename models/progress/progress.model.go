package progress

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WatchedSegment is a contiguous stretch of video the learner has seen
type WatchedSegment struct {
	StartSeconds int `json:"start_seconds"`
	EndSeconds   int `json:"end_seconds"`
}

// Interaction is a single recorded learner action inside a lesson
type Interaction struct {
	Type       string    `json:"type"` // PLAY, PAUSE, SEEK, NOTE, QUIZ_OPEN
	PositionAt int       `json:"position_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Note is free-form learner text anchored to a lesson position
type Note struct {
	Body       string    `json:"body"`
	PositionAt int       `json:"position_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Bookmark marks a lesson position the learner wants to return to
type Bookmark struct {
	Label      string    `json:"label"`
	PositionAt int       `json:"position_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// LessonDetail is the granular per-lesson state inside a progress document
type LessonDetail struct {
	StartedAt         time.Time        `json:"started_at"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
	LastPosition      int              `json:"last_position"`      // seconds
	PercentageWatched float64          `json:"percentage_watched"` // 0-100
	WatchedSegments   []WatchedSegment `json:"watched_segments,omitempty"`
	Interactions      []Interaction    `json:"interactions,omitempty"`
	Notes             []Note           `json:"notes,omitempty"`
	Bookmarks         []Bookmark       `json:"bookmarks,omitempty"`
	TimeSpent         int              `json:"time_spent"` // seconds, accumulates
}

// QuizAttempt is one submitted quiz attempt. Grading is done upstream; the
// backend records and aggregates.
type QuizAttempt struct {
	ID          string    `json:"id"` // uuid
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `json:"passed"`
	Answers     string    `json:"answers,omitempty"` // raw answer payload as JSON text
	SubmittedAt time.Time `json:"submitted_at"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// QuizAggregate holds the monotonic best-score view over all attempts for
// one quiz. BestScore, BestPercentage and Passed never decrease.
type QuizAggregate struct {
	Attempts              []QuizAttempt `json:"attempts"`
	BestScore             int           `json:"best_score"`
	BestPercentage        float64       `json:"best_percentage"`
	TotalAttempts         int           `json:"total_attempts"`
	Passed                bool          `json:"passed"`
	CertificationEligible bool          `json:"certification_eligible"`
}

// Engagement is analytics-only aggregate activity data. It never gates
// completion.
type Engagement struct {
	SessionCount         int       `json:"session_count"`
	AverageSessionLength float64   `json:"average_session_length"` // seconds
	TotalActiveTime      int       `json:"total_active_time"`      // seconds
	LastActiveAt         time.Time `json:"last_active_at"`
	StreakDays           int       `json:"streak_days"`
	CompletionVelocity   float64   `json:"completion_velocity"` // lessons per day
	InteractionRate      float64   `json:"interaction_rate"`    // interactions per session
}

// Progress is the per-learner-per-course completion document. One row per
// (user, course) pair, created lazily on the first learning write.
//
// RowVersion implements per-document optimistic concurrency: writers update
// with a `row_version = ?` predicate and must treat zero affected rows as a
// conflict, never as success.
type Progress struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index:idx_progress_user_course,unique;not null"`
	CourseID uint `json:"course_id" gorm:"index:idx_progress_user_course,unique;not null"`

	CompletedLessons  datatypes.JSONSlice[uint]                  `json:"completed_lessons"`
	CompletedSections datatypes.JSONSlice[uint]                  `json:"completed_sections"`
	LessonProgress    datatypes.JSONType[map[uint]LessonDetail]  `json:"lesson_progress"`
	QuizScores        datatypes.JSONType[map[uint]QuizAggregate] `json:"quiz_scores"`
	OverallProgress   int                                        `json:"overall_progress" gorm:"default:0"` // 0-100, derived
	Engagement        datatypes.JSONType[Engagement]             `json:"engagement"`

	RowVersion int `json:"-" gorm:"default:1;not null"`
}

func (Progress) TableName() string {
	return "progress_documents"
}

// HasLesson reports whether the lesson is in the completed set
func (p *Progress) HasLesson(lessonID uint) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// HasSection reports whether the section is in the completed set
func (p *Progress) HasSection(sectionID uint) bool {
	for _, id := range p.CompletedSections {
		if id == sectionID {
			return true
		}
	}
	return false
}

// AddLesson adds the lesson id with set semantics; re-adding is a no-op
func (p *Progress) AddLesson(lessonID uint) {
	if !p.HasLesson(lessonID) {
		p.CompletedLessons = append(p.CompletedLessons, lessonID)
	}
}

// AddSection adds the section id with set semantics
func (p *Progress) AddSection(sectionID uint) {
	if !p.HasSection(sectionID) {
		p.CompletedSections = append(p.CompletedSections, sectionID)
	}
}
