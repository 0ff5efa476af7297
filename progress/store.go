package progress

import (
	"log"
	"math"
	"time"

	progressModels "lms/models/progress"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Threshold constants. The values are product decisions carried as named
// configuration, not derived quantities.
const (
	// VideoCompletionThreshold is the watched percentage at which a video
	// lesson counts as completed (inclusive).
	VideoCompletionThreshold = 80.0

	// CertificationThreshold is the best quiz percentage required for
	// certification eligibility.
	CertificationThreshold = 80.0
)

// maxWriteRetries bounds the optimistic-concurrency retry loop on a single
// progress document
const maxWriteRetries = 3

// sessionGap is the idle time after which activity counts as a new session
const sessionGap = 30 * time.Minute

// QuizSubmission is one graded quiz attempt arriving from the client
type QuizSubmission struct {
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `json:"passed"`
	Answers     string    `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// VideoTelemetry is a watch-progress update for a video lesson
type VideoTelemetry struct {
	PositionSeconds   int                             `json:"position_seconds"`
	PercentageWatched float64                         `json:"percentage_watched"`
	Segments          []progressModels.WatchedSegment `json:"segments"`
	ActiveSeconds     int                             `json:"active_seconds"`
}

// VideoResult reports whether a telemetry update crossed the completion
// threshold
type VideoResult struct {
	LessonCompleted bool                     `json:"lesson_completed"`
	Progress        *progressModels.Progress `json:"progress"`
}

// LessonUpdate is the generic idempotent lesson-progress update. Nil fields
// are left untouched; TimeSpent accumulates.
type LessonUpdate struct {
	TimeSpent         int      `json:"time_spent"`
	CurrentPosition   *int     `json:"current_position"`
	PercentageWatched *float64 `json:"percentage_watched"`
	IsCompleted       *bool    `json:"is_completed"`
}

// UpdateResult reports the outcome of a lesson update. Preserved is true
// when a regressive write was accepted as a no-op and the prior completed
// state kept.
type UpdateResult struct {
	Preserved bool                     `json:"preserved"`
	Progress  *progressModels.Progress `json:"progress"`
}

// SectionResult reports a section-completion attempt. CourseCompleted and
// NextSectionID are declared extension points: the ordering policy for "next
// section" is not decided yet, so they always report false / zero.
type SectionResult struct {
	Completed       bool                     `json:"completed"`
	CompletionRate  float64                  `json:"completion_rate"` // percent of required lessons done
	MissingLessons  []uint                   `json:"missing_lessons,omitempty"`
	CourseCompleted bool                     `json:"course_completed"`
	NextSectionID   uint                     `json:"next_section_id"`
	Progress        *progressModels.Progress `json:"progress,omitempty"`
}

// Store owns all mutations of the per-learner progress document. Progress is
// a monotonic ratchet: completions and best scores never move backward.
type Store struct {
	db          *gorm.DB
	structure   StructureProvider
	consistency *Consistency
}

// NewStore builds the progress store
func NewStore(db *gorm.DB, structure StructureProvider, consistency *Consistency) *Store {
	return &Store{db: db, structure: structure, consistency: consistency}
}

// GetOrCreate fetches the progress document for the pair, creating an empty
// one on the first learning-related write
func (s *Store) GetOrCreate(userID, courseID uint) (*progressModels.Progress, error) {
	var doc progressModels.Progress
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&doc).Error
	if err == nil {
		return &doc, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	doc = progressModels.Progress{
		UserID:            userID,
		CourseID:          courseID,
		CompletedLessons:  []uint{},
		CompletedSections: []uint{},
		RowVersion:        1,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		// Lost a create race: the other writer's row is the document
		var existing progressModels.Progress
		if ferr := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &doc, nil
}

// Get fetches the progress document without creating one
func (s *Store) Get(userID, courseID uint) (*progressModels.Progress, error) {
	var doc progressModels.Progress
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// CompleteLesson adds a lesson to the completed set. Set semantics: a repeat
// completion is a no-op, not an error.
func (s *Store) CompleteLesson(userID, courseID, lessonID uint) (*progressModels.Progress, error) {
	valid, err := s.structure.LessonIDSet(courseID)
	if err != nil {
		return nil, err
	}
	if !valid[lessonID] {
		return nil, ErrLessonNotFound
	}

	doc, err := s.mutate(userID, courseID, func(p *progressModels.Progress) error {
		s.markLessonCompleted(p, lessonID)
		touchEngagement(p, 0, 1)
		return s.recomputeOverall(p)
	})
	if err != nil {
		return nil, err
	}

	s.consistency.syncEnrollmentBestEffort(doc)
	return doc, nil
}

// RecordQuizAttempt appends a quiz attempt and folds it into the monotonic
// aggregate: best scores only ever rise and a pass is sticky. The written
// document is read back before returning; a missing quiz entry is a hard
// error rather than a silently lost write.
func (s *Store) RecordQuizAttempt(userID, courseID, quizID uint, sub QuizSubmission) (*progressModels.QuizAggregate, error) {
	attempt := progressModels.QuizAttempt{
		ID:          uuid.NewString(),
		Score:       sub.Score,
		MaxScore:    sub.MaxScore,
		Percentage:  sub.Percentage,
		Passed:      sub.Passed,
		Answers:     sub.Answers,
		SubmittedAt: sub.SubmittedAt,
		RecordedAt:  time.Now().UTC(),
	}

	doc, err := s.mutate(userID, courseID, func(p *progressModels.Progress) error {
		scores := p.QuizScores.Data()
		if scores == nil {
			scores = make(map[uint]progressModels.QuizAggregate)
		}

		agg, exists := scores[quizID]
		if exists {
			agg.Attempts = append(agg.Attempts, attempt)
			agg.TotalAttempts++
			if attempt.Score > agg.BestScore {
				agg.BestScore = attempt.Score
			}
			if attempt.Percentage > agg.BestPercentage {
				agg.BestPercentage = attempt.Percentage
			}
			agg.Passed = agg.Passed || attempt.Passed
		} else {
			agg = progressModels.QuizAggregate{
				Attempts:       []progressModels.QuizAttempt{attempt},
				BestScore:      attempt.Score,
				BestPercentage: attempt.Percentage,
				TotalAttempts:  1,
				Passed:         attempt.Passed,
			}
		}
		agg.CertificationEligible = agg.Passed && agg.BestPercentage >= CertificationThreshold

		scores[quizID] = agg
		p.QuizScores = newJSON(scores)
		touchEngagement(p, 0, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Read back and confirm the attempt landed
	fresh, err := s.Get(userID, courseID)
	if err != nil {
		return nil, ErrVerificationFailed
	}
	agg, ok := fresh.QuizScores.Data()[quizID]
	if !ok || !containsAttempt(agg.Attempts, attempt.ID) {
		return nil, ErrVerificationFailed
	}

	s.consistency.syncEnrollmentBestEffort(doc)
	return &agg, nil
}

// UpdateVideoProgress applies watch telemetry. Crossing the completion
// threshold marks the lesson completed; telemetry below it only updates
// position and segments and never regresses a prior completion.
func (s *Store) UpdateVideoProgress(userID, courseID, lessonID uint, t VideoTelemetry) (*VideoResult, error) {
	valid, err := s.structure.LessonIDSet(courseID)
	if err != nil {
		return nil, err
	}
	if !valid[lessonID] {
		return nil, ErrLessonNotFound
	}

	completed := false
	doc, err := s.mutate(userID, courseID, func(p *progressModels.Progress) error {
		completed = false
		detail := lessonDetail(p, lessonID)
		detail.LastPosition = t.PositionSeconds
		detail.PercentageWatched = t.PercentageWatched
		detail.WatchedSegments = append(detail.WatchedSegments, t.Segments...)
		detail.TimeSpent += t.ActiveSeconds

		if t.PercentageWatched >= VideoCompletionThreshold && detail.CompletedAt == nil {
			now := time.Now().UTC()
			detail.CompletedAt = &now
			completed = true
		}
		setLessonDetail(p, lessonID, detail)

		if completed {
			p.AddLesson(lessonID)
			if err := s.recomputeOverall(p); err != nil {
				return err
			}
		}
		touchEngagement(p, t.ActiveSeconds, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.consistency.syncEnrollmentBestEffort(doc)
	}
	return &VideoResult{LessonCompleted: completed, Progress: doc}, nil
}

// UpdateLessonProgress is the generic idempotent lesson update: time spent
// accumulates, position and percentage overwrite (most recent wins), and a
// completion downgrade is accepted as a no-op with Preserved set so the
// caller can surface a warning.
func (s *Store) UpdateLessonProgress(userID, courseID, lessonID uint, u LessonUpdate) (*UpdateResult, error) {
	valid, err := s.structure.LessonIDSet(courseID)
	if err != nil {
		return nil, err
	}
	if !valid[lessonID] {
		return nil, ErrLessonNotFound
	}

	preserved := false
	completedNow := false
	doc, err := s.mutate(userID, courseID, func(p *progressModels.Progress) error {
		preserved = false
		completedNow = false

		detail := lessonDetail(p, lessonID)
		detail.TimeSpent += u.TimeSpent
		if u.CurrentPosition != nil {
			detail.LastPosition = *u.CurrentPosition
		}
		if u.PercentageWatched != nil {
			detail.PercentageWatched = *u.PercentageWatched
		}

		if u.IsCompleted != nil {
			if *u.IsCompleted && detail.CompletedAt == nil {
				now := time.Now().UTC()
				detail.CompletedAt = &now
				completedNow = true
			}
			if !*u.IsCompleted && (detail.CompletedAt != nil || p.HasLesson(lessonID)) {
				// Monotonic ratchet: keep the completed state, tell the caller
				preserved = true
			}
		}
		setLessonDetail(p, lessonID, detail)

		if completedNow {
			p.AddLesson(lessonID)
			if err := s.recomputeOverall(p); err != nil {
				return err
			}
		}
		touchEngagement(p, u.TimeSpent, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Every write must be confirmed durable before reporting success
	fresh, err := s.Get(userID, courseID)
	if err != nil {
		return nil, ErrVerificationFailed
	}
	if _, ok := fresh.LessonProgress.Data()[lessonID]; !ok {
		return nil, ErrVerificationFailed
	}

	if completedNow {
		s.consistency.syncEnrollmentBestEffort(doc)
	}
	return &UpdateResult{Preserved: preserved, Progress: doc}, nil
}

// CompleteSection marks a section done once every required lesson is
// completed. Partial completion is not an error: the current rate is
// reported and the section stays incomplete.
func (s *Store) CompleteSection(userID, courseID, sectionID uint) (*SectionResult, error) {
	section, err := s.structure.Section(courseID, sectionID)
	if err != nil {
		return nil, err
	}

	doc, err := s.GetOrCreate(userID, courseID)
	if err != nil {
		return nil, err
	}

	var missing []uint
	for _, lessonID := range section.RequiredLessons {
		if !doc.HasLesson(lessonID) {
			missing = append(missing, lessonID)
		}
	}

	total := len(section.RequiredLessons)
	rate := 100.0
	if total > 0 {
		rate = math.Round(float64(total-len(missing)) / float64(total) * 100)
	}

	if len(missing) > 0 {
		return &SectionResult{
			Completed:      false,
			CompletionRate: rate,
			MissingLessons: missing,
		}, nil
	}

	doc, err = s.mutate(userID, courseID, func(p *progressModels.Progress) error {
		p.AddSection(sectionID)
		return s.recomputeOverall(p)
	})
	if err != nil {
		return nil, err
	}

	s.consistency.syncEnrollmentBestEffort(doc)
	return &SectionResult{
		Completed:      true,
		CompletionRate: rate,
		Progress:       doc,
	}, nil
}

// ── internals ──

// mutate runs a read-modify-write cycle under per-document optimistic
// concurrency. A stale write fails and the whole cycle is retried against a
// fresh read; the conflict is never swallowed as success.
func (s *Store) mutate(userID, courseID uint, fn func(*progressModels.Progress) error) (*progressModels.Progress, error) {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		doc, err := s.GetOrCreate(userID, courseID)
		if err != nil {
			return nil, err
		}
		if err := fn(doc); err != nil {
			return nil, err
		}

		err = saveDocument(s.db, doc)
		if err == ErrWriteConflict {
			log.Printf("[PROGRESS] Write conflict on progress %d (user %d course %d), retrying", doc.ID, userID, courseID)
			continue
		}
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
	return nil, ErrWriteConflict
}

// saveDocument writes the document guarded by its row version. Zero affected
// rows means a concurrent writer got there first.
func saveDocument(db *gorm.DB, p *progressModels.Progress) error {
	res := db.Model(&progressModels.Progress{}).
		Where("id = ? AND row_version = ?", p.ID, p.RowVersion).
		Updates(map[string]interface{}{
			"completed_lessons":  p.CompletedLessons,
			"completed_sections": p.CompletedSections,
			"lesson_progress":    p.LessonProgress,
			"quiz_scores":        p.QuizScores,
			"overall_progress":   p.OverallProgress,
			"engagement":         p.Engagement,
			"row_version":        p.RowVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWriteConflict
	}
	p.RowVersion++
	return nil
}

func (s *Store) markLessonCompleted(p *progressModels.Progress, lessonID uint) {
	p.AddLesson(lessonID)
	detail := lessonDetail(p, lessonID)
	if detail.CompletedAt == nil {
		now := time.Now().UTC()
		detail.CompletedAt = &now
	}
	setLessonDetail(p, lessonID, detail)
}

// recomputeOverall derives the aggregate percentage from the authoritative
// course structure. totalLessons is never cached on the document.
func (s *Store) recomputeOverall(p *progressModels.Progress) error {
	total, err := s.structure.TotalLessons(p.CourseID)
	if err != nil {
		return err
	}
	p.OverallProgress = OverallPercentage(len(p.CompletedLessons), total)
	return nil
}

// OverallPercentage is round(100 * completed / total) clamped to [0,100]
func OverallPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

func lessonDetail(p *progressModels.Progress, lessonID uint) progressModels.LessonDetail {
	details := p.LessonProgress.Data()
	if detail, ok := details[lessonID]; ok {
		return detail
	}
	return progressModels.LessonDetail{StartedAt: time.Now().UTC()}
}

func setLessonDetail(p *progressModels.Progress, lessonID uint, detail progressModels.LessonDetail) {
	details := p.LessonProgress.Data()
	if details == nil {
		details = make(map[uint]progressModels.LessonDetail)
	}
	details[lessonID] = detail
	p.LessonProgress = newJSON(details)
}

func containsAttempt(attempts []progressModels.QuizAttempt, id string) bool {
	for _, a := range attempts {
		if a.ID == id {
			return true
		}
	}
	return false
}

// touchEngagement updates the analytics-only activity aggregates. These
// figures never gate completion.
func touchEngagement(p *progressModels.Progress, activeSeconds, interactions int) {
	e := p.Engagement.Data()
	now := time.Now().UTC()

	if e.LastActiveAt.IsZero() || now.Sub(e.LastActiveAt) > sessionGap {
		e.SessionCount++
	}

	switch {
	case e.LastActiveAt.IsZero():
		e.StreakDays = 1
	case sameDay(now, e.LastActiveAt):
		// same-day activity keeps the streak as is
	case sameDay(now, e.LastActiveAt.Add(24*time.Hour)):
		e.StreakDays++
	default:
		e.StreakDays = 1
	}

	e.TotalActiveTime += activeSeconds
	if e.SessionCount > 0 {
		e.AverageSessionLength = float64(e.TotalActiveTime) / float64(e.SessionCount)
		e.InteractionRate = (e.InteractionRate*float64(e.SessionCount-1) + float64(interactions)) / float64(e.SessionCount)
	}
	e.LastActiveAt = now

	if ageDays := time.Since(p.CreatedAt).Hours() / 24; ageDays >= 1 {
		e.CompletionVelocity = float64(len(p.CompletedLessons)) / ageDays
	} else {
		e.CompletionVelocity = float64(len(p.CompletedLessons))
	}

	p.Engagement = newJSON(e)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
