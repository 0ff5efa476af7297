package progress

import (
	"testing"
	"time"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures progress events for assertions
type recordingNotifier struct {
	milestones []int
	certs      []*courseModels.Certificate
}

func (n *recordingNotifier) ProgressMilestone(_, _ uint, percent int) {
	n.milestones = append(n.milestones, percent)
}

func (n *recordingNotifier) CertificateIssued(cert *courseModels.Certificate) {
	n.certs = append(n.certs, cert)
}

func TestSweepPrunesOrphansAndCorrectsOverall(t *testing.T) {
	f := newFixture(t)

	// A document referencing a lesson that no longer exists, with a stale
	// overall percentage
	doc := progressModels.Progress{
		UserID:           learnerID,
		CourseID:         f.course.ID,
		CompletedLessons: []uint{f.lessons[0].ID, f.lessons[1].ID, 9999},
		OverallProgress:  100,
		RowVersion:       1,
	}
	require.NoError(t, f.db.Create(&doc).Error)

	report, err := f.consistency.EnsureCourseProgressConsistency(learnerID, f.course.ID)
	require.NoError(t, err)

	assert.True(t, report.WasInconsistent)
	assert.Len(t, report.Fixes, 2)
	assert.Equal(t, 67, report.OverallProgress)

	var fresh progressModels.Progress
	require.NoError(t, f.db.First(&fresh, doc.ID).Error)
	assert.ElementsMatch(t, []uint{f.lessons[0].ID, f.lessons[1].ID}, []uint(fresh.CompletedLessons))
	assert.Equal(t, 67, fresh.OverallProgress)
}

func TestSweepPrunesOrphanedSections(t *testing.T) {
	f := newFixture(t)

	// The section-completed set references a section the course no longer has
	doc := progressModels.Progress{
		UserID:            learnerID,
		CourseID:          f.course.ID,
		CompletedLessons:  []uint{f.lessons[0].ID},
		CompletedSections: []uint{f.section.ID, 4242},
		OverallProgress:   33,
		RowVersion:        1,
	}
	require.NoError(t, f.db.Create(&doc).Error)

	report, err := f.consistency.EnsureCourseProgressConsistency(learnerID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, report.WasInconsistent)
	require.Len(t, report.Fixes, 1)
	assert.Contains(t, report.Fixes[0], "section")

	var fresh progressModels.Progress
	require.NoError(t, f.db.First(&fresh, doc.ID).Error)
	assert.Equal(t, []uint{f.section.ID}, []uint(fresh.CompletedSections))
	assert.NotContains(t, []uint(fresh.CompletedSections), uint(4242))

	// Already-repaired document: a second pass finds nothing
	second, err := f.consistency.EnsureCourseProgressConsistency(learnerID, f.course.ID)
	require.NoError(t, err)
	assert.False(t, second.WasInconsistent)
}

func TestSweepIsIdempotent(t *testing.T) {
	f := newFixture(t)

	doc := progressModels.Progress{
		UserID:           learnerID,
		CourseID:         f.course.ID,
		CompletedLessons: []uint{f.lessons[0].ID, 9999},
		OverallProgress:  80,
		RowVersion:       1,
	}
	require.NoError(t, f.db.Create(&doc).Error)

	first, err := f.consistency.EnsureCourseProgressConsistency(learnerID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, first.WasInconsistent)

	// Second run over the already repaired document finds nothing
	second, err := f.consistency.EnsureCourseProgressConsistency(learnerID, f.course.ID)
	require.NoError(t, err)
	assert.False(t, second.WasInconsistent)
	assert.Empty(t, second.Fixes)
	assert.Equal(t, first.OverallProgress, second.OverallProgress)
}

func TestSweepWithinToleranceLeavesOverallAlone(t *testing.T) {
	f := newFixture(t)

	// 2 of 3 lessons computes to 67; a stored 70 is within the tolerance
	doc := progressModels.Progress{
		UserID:           learnerID,
		CourseID:         f.course.ID,
		CompletedLessons: []uint{f.lessons[0].ID, f.lessons[1].ID},
		OverallProgress:  70,
		RowVersion:       1,
	}
	require.NoError(t, f.db.Create(&doc).Error)

	report, err := f.consistency.EnsureCourseProgressConsistency(learnerID, f.course.ID)
	require.NoError(t, err)
	assert.False(t, report.WasInconsistent)
	assert.Equal(t, 70, report.OverallProgress)
}

func TestSweepMissingDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.consistency.EnsureCourseProgressConsistency(learnerID, f.course.ID)
	assert.ErrorIs(t, err, ErrProgressNotFound)
}

func TestSyncNewerClientSnapshotMerges(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)

	client := progressModels.ClientSnapshot{
		CompletedLessons: []uint{f.lessons[1].ID},
		OverallProgress:  50,
		TimeSpent:        600,
		LastUpdated:      time.Now().Add(time.Hour),
	}

	result, err := f.consistency.SyncProgressState(learnerID, f.course.ID, client)
	require.NoError(t, err)

	assert.Equal(t, progressModels.ResolutionMerged, result.Resolution)
	assert.Empty(t, result.Conflicts)
	// Union of both completion sets, nothing lost on either side
	assert.True(t, result.Progress.HasLesson(f.lessons[0].ID))
	assert.True(t, result.Progress.HasLesson(f.lessons[1].ID))
	assert.Equal(t, 50, result.Progress.OverallProgress)
	assert.Equal(t, 600, result.Progress.Engagement.Data().TotalActiveTime)
}

func TestSyncOlderClientSnapshotServerWins(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)

	client := progressModels.ClientSnapshot{
		CompletedLessons: []uint{f.lessons[1].ID},
		OverallProgress:  90,
		LastUpdated:      time.Now().Add(-time.Hour),
	}

	result, err := f.consistency.SyncProgressState(learnerID, f.course.ID, client)
	require.NoError(t, err)

	assert.Equal(t, progressModels.ResolutionServerWins, result.Resolution)
	// Stale snapshot: server state untouched, no conflict record
	assert.Empty(t, result.Conflicts)
	assert.False(t, result.Progress.HasLesson(f.lessons[1].ID))
	assert.Equal(t, 33, result.Progress.OverallProgress)
}

func TestSyncEqualTimestampsReportsConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CompleteLesson(learnerID, f.course.ID, f.lessons[0].ID)
	require.NoError(t, err)

	doc, err := f.store.Get(learnerID, f.course.ID)
	require.NoError(t, err)

	client := progressModels.ClientSnapshot{
		CompletedLessons: []uint{f.lessons[1].ID},
		LastUpdated:      doc.UpdatedAt,
	}

	result, err := f.consistency.SyncProgressState(learnerID, f.course.ID, client)
	require.NoError(t, err)

	assert.Equal(t, progressModels.ResolutionServerWins, result.Resolution)
	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, progressModels.ConflictLessonCompletion, conflict.Type)
	assert.Equal(t, []uint{f.lessons[0].ID}, conflict.ServerOnly)
	assert.Equal(t, []uint{f.lessons[1].ID}, conflict.ClientOnly)
}

func TestSyncMergePreservesLessonDetailRatchet(t *testing.T) {
	f := newFixture(t)
	lessonID := f.lessons[0].ID

	pos, pct := 500, 90.0
	_, err := f.store.UpdateLessonProgress(learnerID, f.course.ID, lessonID, LessonUpdate{
		TimeSpent: 300, CurrentPosition: &pos, PercentageWatched: &pct,
	})
	require.NoError(t, err)

	// Client has less watch progress but more accumulated time
	client := progressModels.ClientSnapshot{
		LessonProgress: map[uint]progressModels.LessonDetail{
			lessonID: {
				LastPosition:      100,
				PercentageWatched: 40,
				TimeSpent:         900,
			},
		},
		LastUpdated: time.Now().Add(time.Hour),
	}

	result, err := f.consistency.SyncProgressState(learnerID, f.course.ID, client)
	require.NoError(t, err)
	require.Equal(t, progressModels.ResolutionMerged, result.Resolution)

	detail := result.Progress.LessonProgress.Data()[lessonID]
	assert.Equal(t, 900, detail.TimeSpent)
	// Higher watch percentage keeps its position
	assert.Equal(t, 90.0, detail.PercentageWatched)
	assert.Equal(t, 500, detail.LastPosition)
}

func TestSyncEnrollmentMilestonesAndCertificate(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	consistency := NewConsistency(f.db, NewCourseStructure(f.db), NewEnrollments(f.db), NewCertificates(f.db), notifier)

	doc := &progressModels.Progress{
		UserID:          learnerID,
		CourseID:        f.course.ID,
		OverallProgress: 60,
		RowVersion:      1,
	}
	require.NoError(t, f.db.Create(doc).Error)

	require.NoError(t, consistency.SyncEnrollment(doc))
	assert.Equal(t, []int{25, 50}, notifier.milestones)

	enrollment := f.reloadEnrollment(t)
	assert.Equal(t, 60, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentActive, enrollment.Status)

	doc.OverallProgress = 100
	require.NoError(t, consistency.SyncEnrollment(doc))
	assert.Equal(t, []int{25, 50, 75, 100}, notifier.milestones)
	require.Len(t, notifier.certs, 1)

	enrollment = f.reloadEnrollment(t)
	assert.Equal(t, 100, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)
}

func TestSyncEnrollmentWithinToleranceSkipsWrite(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(&courseModels.Enrollment{}).
		Where("id = ?", f.enrollment.ID).Update("progress", 30).Error)

	doc := &progressModels.Progress{
		UserID:          learnerID,
		CourseID:        f.course.ID,
		OverallProgress: 33,
		RowVersion:      1,
	}
	require.NoError(t, f.db.Create(doc).Error)

	require.NoError(t, f.consistency.SyncEnrollment(doc))
	enrollment := f.reloadEnrollment(t)
	assert.Equal(t, 30, enrollment.Progress)
}

func TestSyncEnrollmentCompletionBypassesTolerance(t *testing.T) {
	f := newFixture(t)

	// Enrollment sits at 97, document reaches 100: the 5-point tolerance
	// must not skip the completion flip
	require.NoError(t, f.db.Model(&courseModels.Enrollment{}).
		Where("id = ?", f.enrollment.ID).Update("progress", 97).Error)

	doc := &progressModels.Progress{
		UserID:          learnerID,
		CourseID:        f.course.ID,
		OverallProgress: 100,
		RowVersion:      1,
	}
	require.NoError(t, f.db.Create(doc).Error)

	require.NoError(t, f.consistency.SyncEnrollment(doc))
	enrollment := f.reloadEnrollment(t)
	assert.Equal(t, 100, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)
}

func TestCertificateIssueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	certs := NewCertificates(f.db)

	first, err := certs.Issue(f.enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := certs.Issue(f.enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)

	var count int64
	require.NoError(t, f.db.Model(&courseModels.Certificate{}).
		Where("enrollment_id = ?", f.enrollment.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCertificateFinalGradeWeighting(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.RecordQuizAttempt(learnerID, f.course.ID, 1, QuizSubmission{
		Score: 90, MaxScore: 100, Percentage: 90, Passed: true, SubmittedAt: time.Now(),
	})
	require.NoError(t, err)

	// One quiz with best percentage 90: 90*0.7 + 100*0.3 = 93
	require.NoError(t, f.db.Model(&courseModels.Enrollment{}).
		Where("id = ?", f.enrollment.ID).Update("progress", 100).Error)

	cert, err := NewCertificates(f.db).Issue(f.enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 93, cert.FinalGrade)
}

func TestCertificateFinalGradeWithoutQuizzes(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(&courseModels.Enrollment{}).
		Where("id = ?", f.enrollment.ID).Update("progress", 85).Error)

	cert, err := NewCertificates(f.db).Issue(f.enrollment.ID)
	require.NoError(t, err)
	// No quiz data: progress alone carries the grade
	assert.Equal(t, 85, cert.FinalGrade)
}
