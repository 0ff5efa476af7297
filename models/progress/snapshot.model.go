package progress

import "time"

// ClientSnapshot is a progress snapshot submitted by an offline-capable
// client during resync
type ClientSnapshot struct {
	CompletedLessons []uint                `json:"completed_lessons"`
	LessonProgress   map[uint]LessonDetail `json:"lesson_progress"`
	OverallProgress  int                   `json:"overall_progress"`
	TimeSpent        int                   `json:"time_spent"` // total active seconds
	LastUpdated      time.Time             `json:"last_updated"`
}

// Sync resolution values
const (
	ResolutionMerged     = "merged"
	ResolutionServerWins = "server_wins"
)

// Conflict types
const (
	ConflictLessonCompletion = "lesson_completion"
)

// Conflict is a structured record of divergent completion state found while
// reconciling a client snapshot against the server document
type Conflict struct {
	Type       string `json:"type"`
	ServerOnly []uint `json:"server_only"`
	ClientOnly []uint `json:"client_only"`
}

// SyncResult reports how a client snapshot was reconciled. Conflicts are
// reported, not fatal.
type SyncResult struct {
	Resolution string     `json:"resolution"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
	Progress   *Progress  `json:"progress"`
}

// ConsistencyReport is the outcome of one consistency sweep over a single
// learner x course progress document
type ConsistencyReport struct {
	WasInconsistent bool     `json:"was_inconsistent"`
	Fixes           []string `json:"fixes,omitempty"`
	OverallProgress int      `json:"overall_progress"`
}
