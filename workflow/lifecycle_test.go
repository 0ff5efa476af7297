package workflow

import (
	"fmt"
	"sync/atomic"
	"testing"

	"lms/models"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:workflow_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&courseModels.Course{},
		&courseModels.Section{},
		&courseModels.Lesson{},
		&courseModels.Quiz{},
		&courseModels.WorkflowHistory{},
		&courseModels.CourseVersion{},
	))
	return db
}

func seedUsers(t *testing.T, db *gorm.DB) (author, admin *models.User) {
	t.Helper()
	author = &models.User{Name: "Ana Author", Email: "ana@example.com", Password: "x", Role: "USER"}
	admin = &models.User{Name: "Alex Admin", Email: "alex@example.com", Password: "x", Role: "ADMIN"}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(admin).Error)
	return author, admin
}

func validCourseInput() CourseInput {
	return CourseInput{
		Title:       "Intro to Distributed Systems",
		Description: "A practical walkthrough of consensus, replication and failure modes.",
		Category:    "engineering",
		Level:       courseModels.LevelIntermediate,
	}
}

// seedStructure gives the course enough content to pass submission gating
func seedStructure(t *testing.T, db *gorm.DB, courseID uint) {
	t.Helper()
	section := courseModels.Section{CourseID: courseID, Title: "Basics", OrderIndex: 1}
	require.NoError(t, db.Create(&section).Error)
	lessons := []courseModels.Lesson{
		{SectionID: section.ID, CourseID: courseID, Title: "Welcome", Type: courseModels.LessonTypeVideo, HasCaptions: true},
		{SectionID: section.ID, CourseID: courseID, Title: "Reading", Type: courseModels.LessonTypeText},
		{SectionID: section.ID, CourseID: courseID, Title: "Checkpoint", Type: courseModels.LessonTypeQuiz},
	}
	require.NoError(t, db.Create(&lessons).Error)
}

func TestCreateStartsInDraftWithHistory(t *testing.T) {
	db := testDB(t)
	author, _ := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusDraft, course.Status)

	var history []courseModels.WorkflowHistory
	require.NoError(t, db.Where("course_id = ?", course.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, courseModels.ActionCreated, history[0].Action)
	assert.Equal(t, courseModels.RoleAuthor, history[0].PerformedByRole)

	// Drafts may be invalid: no sections yet, but creation never fails
	validation := course.Validation.Data()
	assert.False(t, validation.IsValid)
	assert.Contains(t, validation.Errors, "Course has no sections!")
}

func TestSubmitRequiresValidCourse(t *testing.T) {
	db := testDB(t)
	author, _ := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)

	_, err = svc.Submit(course.ID, author)
	var vErr *ValidationFailedError
	require.ErrorAs(t, err, &vErr)
	assert.NotEmpty(t, vErr.Errors)

	// Status untouched by the failed submit, but the fresh validation result
	// was persisted so the author can see what to fix
	var fresh courseModels.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, courseModels.StatusDraft, fresh.Status)
	assert.False(t, fresh.Validation.Data().IsValid)
	assert.Equal(t, vErr.Errors, fresh.Validation.Data().Errors)
}

func TestSubmitHappyPath(t *testing.T) {
	db := testDB(t)
	author, _ := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)

	submitted, err := svc.Submit(course.ID, author)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusSubmitted, submitted.Status)
	assert.True(t, submitted.Validation.Data().IsValid)
}

func TestSubmitUnauthorized(t *testing.T) {
	db := testDB(t)
	author, _ := seedUsers(t, db)
	stranger := &models.User{Name: "Sam", Email: "sam@example.com", Password: "x", Role: "USER"}
	require.NoError(t, db.Create(stranger).Error)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)

	_, err = svc.Submit(course.ID, stranger)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIllegalTransitionsLeaveStatusUnchanged(t *testing.T) {
	db := testDB(t)
	author, admin := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)

	// draft -> published directly must fail
	_, err = svc.Publish(course.ID, admin)
	var tErr *InvalidTransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, courseModels.StatusDraft, tErr.From)

	// draft -> under_review must fail too
	_, err = svc.StartReview(course.ID, admin)
	require.ErrorAs(t, err, &tErr)

	var fresh courseModels.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, courseModels.StatusDraft, fresh.Status)
}

func TestCanTransitionTable(t *testing.T) {
	assert.True(t, CanTransition(courseModels.StatusDraft, courseModels.StatusSubmitted))
	assert.True(t, CanTransition(courseModels.StatusSubmitted, courseModels.StatusUnderReview))
	assert.True(t, CanTransition(courseModels.StatusApproved, courseModels.StatusPublished))
	assert.True(t, CanTransition(courseModels.StatusArchived, courseModels.StatusPublished))

	assert.False(t, CanTransition(courseModels.StatusDraft, courseModels.StatusPublished))
	assert.False(t, CanTransition(courseModels.StatusPublished, courseModels.StatusDraft))
	assert.False(t, CanTransition(courseModels.StatusArchived, courseModels.StatusDraft))
	assert.False(t, CanTransition(courseModels.StatusUnderReview, courseModels.StatusSubmitted))
}

func TestApproveAutoPublishesWithTwoHistoryEntries(t *testing.T) {
	db := testDB(t)
	author, admin := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)

	_, err = svc.Submit(course.ID, author)
	require.NoError(t, err)
	_, err = svc.StartReview(course.ID, admin)
	require.NoError(t, err)

	approved, err := svc.Approve(course.ID, admin, FeedbackInput{
		Strengths: []string{"clear structure"},
	})
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusPublished, approved.Status)

	var history []courseModels.WorkflowHistory
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("id asc").Find(&history).Error)
	// create, submit, review_started, approve, publish
	require.Len(t, history, 5)
	assert.Equal(t, courseModels.ActionApproved, history[3].Action)
	assert.Equal(t, courseModels.ActionPublished, history[4].Action)
	assert.Equal(t, courseModels.StatusApproved, history[4].FromStatus)
	assert.Equal(t, courseModels.StatusPublished, history[4].ToStatus)

	// Criterion scores default to 85 and set the quality score
	feedback := approved.ApprovalFeedback.Data()
	assert.Equal(t, 85, feedback.CriterionScores["content_quality"])
	assert.Equal(t, 85, feedback.OverallScore)
	assert.Equal(t, 85, approved.QualityScore)

	// Auto-publish also snapshots a version
	var versions int64
	db.Model(&courseModels.CourseVersion{}).Where("course_id = ?", course.ID).Count(&versions)
	assert.EqualValues(t, 1, versions)
}

func TestRejectStoresReasonAndDefaults(t *testing.T) {
	db := testDB(t)
	author, admin := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)

	_, err = svc.Submit(course.ID, author)
	require.NoError(t, err)

	rejected, err := svc.Reject(course.ID, admin, FeedbackInput{}, "Sections lack depth")
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusRejected, rejected.Status)
	assert.Equal(t, "Sections lack depth", rejected.RejectionReason)
	assert.Equal(t, 40, rejected.ApprovalFeedback.Data().CriterionScores["structure"])

	// Rejected courses can be reopened by the author
	reopened, err := svc.Reopen(course.ID, author)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusDraft, reopened.Status)
}

func TestApproveRequiresAdmin(t *testing.T) {
	db := testDB(t)
	author, _ := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)
	_, err = svc.Submit(course.ID, author)
	require.NoError(t, err)

	_, err = svc.Approve(course.ID, author, FeedbackInput{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestArchiveAndReinstate(t *testing.T) {
	db := testDB(t)
	author, admin := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)
	_, err = svc.Submit(course.ID, author)
	require.NoError(t, err)
	_, err = svc.Approve(course.ID, admin, FeedbackInput{})
	require.NoError(t, err)

	archived, err := svc.Archive(course.ID, author, "Out of date")
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusArchived, archived.Status)

	back, err := svc.Reinstate(course.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusPublished, back.Status)
}

func TestSuspendFromPublished(t *testing.T) {
	db := testDB(t)
	author, admin := seedUsers(t, db)
	svc := NewService(db, nil)

	course, err := svc.Create(validCourseInput(), author)
	require.NoError(t, err)
	seedStructure(t, db, course.ID)
	_, err = svc.Submit(course.ID, author)
	require.NoError(t, err)
	_, err = svc.Approve(course.ID, admin, FeedbackInput{})
	require.NoError(t, err)

	suspended, err := svc.Suspend(course.ID, admin, "Copyright complaint")
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusSuspended, suspended.Status)

	// suspended -> archived is legal
	archived, err := svc.Archive(course.ID, admin, "Complaint upheld")
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusArchived, archived.Status)
}

func TestNotFound(t *testing.T) {
	db := testDB(t)
	_, admin := seedUsers(t, db)
	svc := NewService(db, nil)

	_, err := svc.StartReview(9999, admin)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}
