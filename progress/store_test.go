package progress

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:progress_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Section{},
		&courseModels.Lesson{},
		&courseModels.Quiz{},
		&courseModels.Enrollment{},
		&courseModels.Certificate{},
		&progressModels.Progress{},
	))
	return db
}

type fixture struct {
	db          *gorm.DB
	store       *Store
	consistency *Consistency
	course      *courseModels.Course
	lessons     []courseModels.Lesson
	section     *courseModels.Section
	enrollment  *courseModels.Enrollment
}

const learnerID uint = 7

// newFixture seeds a published course with one section of three lessons and
// an active enrollment for the learner
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)

	course := &courseModels.Course{
		Title:    "Go Fundamentals",
		Status:   courseModels.StatusPublished,
		AuthorID: 1,
	}
	require.NoError(t, db.Create(course).Error)

	section := &courseModels.Section{CourseID: course.ID, Title: "Basics", OrderIndex: 1}
	require.NoError(t, db.Create(section).Error)

	lessons := []courseModels.Lesson{
		{SectionID: section.ID, CourseID: course.ID, Title: "Hello", Type: courseModels.LessonTypeVideo},
		{SectionID: section.ID, CourseID: course.ID, Title: "Types", Type: courseModels.LessonTypeText},
		{SectionID: section.ID, CourseID: course.ID, Title: "Functions", Type: courseModels.LessonTypeText},
	}
	require.NoError(t, db.Create(&lessons).Error)

	enrollment := &courseModels.Enrollment{UserID: learnerID, CourseID: course.ID, Status: courseModels.EnrollmentActive}
	require.NoError(t, db.Create(enrollment).Error)

	structure := NewCourseStructure(db)
	consistency := NewConsistency(db, structure, NewEnrollments(db), NewCertificates(db), nil)
	store := NewStore(db, structure, consistency)

	return &fixture{
		db:          db,
		store:       store,
		consistency: consistency,
		course:      course,
		lessons:     lessons,
		section:     section,
		enrollment:  enrollment,
	}
}

func (f *fixture) reloadEnrollment(t *testing.T) *courseModels.Enrollment {
	t.Helper()
	var e courseModels.Enrollment
	require.NoError(t, f.db.First(&e, f.enrollment.ID).Error)
	return &e
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	f := newFixture(t)

	doc, err := f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, doc.OverallProgress)
	assert.Len(t, doc.CompletedLessons, 1)

	// Repeat add is a no-op, not an error
	doc, err = f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)
	assert.Len(t, doc.CompletedLessons, 1)
	assert.Equal(t, 33, doc.OverallProgress)
}

func TestCompleteLessonUnknownLesson(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CompleteLesson(learnerID, f.course.ID, 9999)
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestQuizMonotonicity(t *testing.T) {
	f := newFixture(t)
	quizID := uint(42)

	percentages := []float64{40, 90, 60}
	passes := []bool{false, true, false}
	for i, pct := range percentages {
		agg, err := f.store.RecordQuizAttempt(learnerID, f.course.ID, quizID, QuizSubmission{
			Score:       int(pct),
			MaxScore:    100,
			Percentage:  pct,
			Passed:      passes[i],
			SubmittedAt: time.Now(),
		})
		require.NoError(t, err)
		require.NotNil(t, agg)
	}

	doc, err := f.store.Get(learnerID, f.course.ID)
	require.NoError(t, err)
	agg := doc.QuizScores.Data()[quizID]

	assert.Equal(t, 3, agg.TotalAttempts)
	assert.Len(t, agg.Attempts, 3)
	assert.Equal(t, 90.0, agg.BestPercentage)
	assert.Equal(t, 90, agg.BestScore)
	// Pass is sticky: the later failing attempt does not undo it
	assert.True(t, agg.Passed)
	// 90 >= 80 and passed
	assert.True(t, agg.CertificationEligible)
}

func TestQuizCertificationEligibilityThreshold(t *testing.T) {
	f := newFixture(t)

	agg, err := f.store.RecordQuizAttempt(learnerID, f.course.ID, 1, QuizSubmission{
		Score: 79, MaxScore: 100, Percentage: 79, Passed: true, SubmittedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, agg.Passed)
	assert.False(t, agg.CertificationEligible)

	agg, err = f.store.RecordQuizAttempt(learnerID, f.course.ID, 1, QuizSubmission{
		Score: 80, MaxScore: 100, Percentage: 80, Passed: false, SubmittedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, agg.Passed)
	assert.True(t, agg.CertificationEligible)
}

func TestVideoCompletionThresholdBoundary(t *testing.T) {
	f := newFixture(t)
	lessonID := f.lessons[0].ID

	result, err := f.store.UpdateVideoProgress(learnerID, f.course.ID, lessonID, VideoTelemetry{
		PositionSeconds:   100,
		PercentageWatched: 79,
	})
	require.NoError(t, err)
	assert.False(t, result.LessonCompleted)
	assert.False(t, result.Progress.HasLesson(lessonID))

	result, err = f.store.UpdateVideoProgress(learnerID, f.course.ID, lessonID, VideoTelemetry{
		PositionSeconds:   110,
		PercentageWatched: 81,
	})
	require.NoError(t, err)
	assert.True(t, result.LessonCompleted)
	assert.True(t, result.Progress.HasLesson(lessonID))

	detail := result.Progress.LessonProgress.Data()[lessonID]
	require.NotNil(t, detail.CompletedAt)
	completedAt := *detail.CompletedAt

	// Later low-percentage telemetry never regresses the completion
	result, err = f.store.UpdateVideoProgress(learnerID, f.course.ID, lessonID, VideoTelemetry{
		PositionSeconds:   10,
		PercentageWatched: 5,
	})
	require.NoError(t, err)
	assert.False(t, result.LessonCompleted)
	assert.True(t, result.Progress.HasLesson(lessonID))
	detail = result.Progress.LessonProgress.Data()[lessonID]
	require.NotNil(t, detail.CompletedAt)
	assert.Equal(t, completedAt.Unix(), detail.CompletedAt.Unix())
}

func TestLessonUpdateRatchet(t *testing.T) {
	f := newFixture(t)
	lessonID := f.lessons[2].ID

	done := true
	result, err := f.store.UpdateLessonProgress(learnerID, f.course.ID, lessonID, LessonUpdate{
		TimeSpent:   120,
		IsCompleted: &done,
	})
	require.NoError(t, err)
	assert.False(t, result.Preserved)
	assert.True(t, result.Progress.HasLesson(lessonID))

	// A downgrade is accepted as a no-op and reported as preserved
	notDone := false
	result, err = f.store.UpdateLessonProgress(learnerID, f.course.ID, lessonID, LessonUpdate{
		TimeSpent:   30,
		IsCompleted: &notDone,
	})
	require.NoError(t, err)
	assert.True(t, result.Preserved)
	assert.True(t, result.Progress.HasLesson(lessonID))

	// Time spent accumulated across both writes
	detail := result.Progress.LessonProgress.Data()[lessonID]
	assert.Equal(t, 150, detail.TimeSpent)
}

func TestLessonUpdateOverwritesPositionMostRecentWins(t *testing.T) {
	f := newFixture(t)
	lessonID := f.lessons[0].ID

	pos1, pct1 := 300, 50.0
	_, err := f.store.UpdateLessonProgress(learnerID, f.course.ID, lessonID, LessonUpdate{
		TimeSpent: 60, CurrentPosition: &pos1, PercentageWatched: &pct1,
	})
	require.NoError(t, err)

	pos2, pct2 := 120, 20.0
	result, err := f.store.UpdateLessonProgress(learnerID, f.course.ID, lessonID, LessonUpdate{
		TimeSpent: 10, CurrentPosition: &pos2, PercentageWatched: &pct2,
	})
	require.NoError(t, err)

	detail := result.Progress.LessonProgress.Data()[lessonID]
	assert.Equal(t, 120, detail.LastPosition)
	assert.Equal(t, 20.0, detail.PercentageWatched)
	assert.Equal(t, 70, detail.TimeSpent)
}

func TestCompleteSectionRequiresAllLessons(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)

	// Partial completion: no error, section stays incomplete
	result, err := f.store.CompleteSection(learnerID, f.course.ID, f.section.ID)
	require.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, 33.0, result.CompletionRate)
	assert.Len(t, result.MissingLessons, 2)

	_, err = f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[1].ID)
	require.NoError(t, err)
	_, err = f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[2].ID)
	require.NoError(t, err)

	result, err = f.store.CompleteSection(learnerID, f.course.ID, f.section.ID)
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 100.0, result.CompletionRate)
	assert.True(t, result.Progress.HasSection(f.section.ID))
	assert.Equal(t, 100, result.Progress.OverallProgress)

	// Next-section lookup and course-completion check are extension points
	assert.False(t, result.CourseCompleted)
	assert.Zero(t, result.NextSectionID)
}

func TestCompleteSectionUnknownSection(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CompleteSection(learnerID, f.course.ID, 9999)
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestEnrollmentSyncAndCompletionCertificate(t *testing.T) {
	f := newFixture(t)

	for _, lesson := range f.lessons {
		_, err := f.store.CompleteLesson(learnerID, f.course.ID, lesson.ID)
		require.NoError(t, err)
	}

	enrollment := f.reloadEnrollment(t)
	assert.Equal(t, 100, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)

	// Completion triggered idempotent certificate issuance
	var certs []courseModels.Certificate
	require.NoError(t, f.db.Where("enrollment_id = ?", f.enrollment.ID).Find(&certs).Error)
	require.Len(t, certs, 1)
	assert.NotEmpty(t, certs[0].CertificateNumber)
}

func TestOverallPercentage(t *testing.T) {
	assert.Equal(t, 0, OverallPercentage(0, 3))
	assert.Equal(t, 33, OverallPercentage(1, 3))
	assert.Equal(t, 67, OverallPercentage(2, 3))
	assert.Equal(t, 100, OverallPercentage(3, 3))
	assert.Equal(t, 0, OverallPercentage(5, 0))
	assert.Equal(t, 100, OverallPercentage(7, 3)) // clamped
}

func TestWriteConflictSurfacesAfterRetries(t *testing.T) {
	f := newFixture(t)

	doc, err := f.store.GetOrCreate(learnerID, f.course.ID)
	require.NoError(t, err)

	// Simulate a writer that always wins the race by bumping the row
	// version out from under the store on every attempt
	stale := *doc
	for i := 0; i < maxWriteRetries; i++ {
		require.NoError(t, f.db.Model(&progressModels.Progress{}).
			Where("id = ?", doc.ID).
			Update("row_version", gorm.Expr("row_version + 1")).Error)
	}
	err = saveDocument(f.db, &stale)
	assert.ErrorIs(t, err, ErrWriteConflict)
}
