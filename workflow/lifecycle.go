package workflow

import (
	"encoding/json"
	"log"
	"time"

	"lms/models"
	courseModels "lms/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// transitions is the legal edge set of the course lifecycle. Any requested
// change not listed here fails with InvalidTransitionError before mutation.
var transitions = map[string][]string{
	courseModels.StatusDraft:       {courseModels.StatusPending, courseModels.StatusSubmitted},
	courseModels.StatusPending:     {courseModels.StatusApproved, courseModels.StatusRejected, courseModels.StatusDraft},
	courseModels.StatusSubmitted:   {courseModels.StatusUnderReview, courseModels.StatusDraft, courseModels.StatusApproved, courseModels.StatusRejected},
	courseModels.StatusUnderReview: {courseModels.StatusApproved, courseModels.StatusRejected},
	courseModels.StatusApproved:    {courseModels.StatusPublished, courseModels.StatusRejected},
	courseModels.StatusRejected:    {courseModels.StatusDraft, courseModels.StatusPending},
	courseModels.StatusPublished:   {courseModels.StatusArchived, courseModels.StatusSuspended},
	courseModels.StatusArchived:    {courseModels.StatusPublished},
	courseModels.StatusSuspended:   {courseModels.StatusPublished, courseModels.StatusArchived},
}

// Default per-criterion review scores when the reviewer does not provide one
const (
	defaultApproveCriterionScore = 85
	defaultRejectCriterionScore  = 40
)

// reviewCriteria are the dimensions every review feedback record covers
var reviewCriteria = []string{"content_quality", "structure", "engagement", "accessibility"}

// CanTransition reports whether from -> to is a legal lifecycle edge
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Notifier is the external notification collaborator. Calls are
// fire-and-forget: implementations log failures and never block or roll
// back the lifecycle mutation that triggered them.
type Notifier interface {
	CourseSubmitted(course *courseModels.Course, author *models.User)
	CourseApproved(course *courseModels.Course, author *models.User, feedback courseModels.ReviewFeedback)
	CourseRejected(course *courseModels.Course, author *models.User, reason string)
}

// NopNotifier discards all notifications
type NopNotifier struct{}

func (NopNotifier) CourseSubmitted(*courseModels.Course, *models.User) {}
func (NopNotifier) CourseApproved(*courseModels.Course, *models.User, courseModels.ReviewFeedback) {
}
func (NopNotifier) CourseRejected(*courseModels.Course, *models.User, string) {}

// CourseInput is the authoring payload for creating a draft course
type CourseInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Level        string `json:"level"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// FeedbackInput is the reviewer's decision payload
type FeedbackInput struct {
	CriterionScores map[string]int `json:"criterion_scores"`
	Strengths       []string       `json:"strengths"`
	Improvements    []string       `json:"improvements"`
}

// Service is the course lifecycle state machine. It holds no mutable state
// of its own; one instance is constructed at startup and shared.
type Service struct {
	db       *gorm.DB
	notifier Notifier
}

// NewService builds the lifecycle engine
func NewService(db *gorm.DB, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{db: db, notifier: notifier}
}

// Create initializes a course in DRAFT and records the first history entry.
// Drafts may be invalid; validation is stored but never blocks creation.
func (s *Service) Create(input CourseInput, author *models.User) (*courseModels.Course, error) {
	course := courseModels.Course{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Level:        input.Level,
		ThumbnailURL: input.ThumbnailURL,
		AuthorID:     author.ID,
		Status:       courseModels.StatusDraft,
	}

	validation := Validate(&course)
	course.Validation = datatypes.NewJSONType(validation)
	course.QualityScore = validation.Score

	if err := s.db.Create(&course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(&course, courseModels.ActionCreated, "", courseModels.StatusDraft, author, "Course created", nil)
	return &course, nil
}

// Submit moves a draft into the review queue. It re-runs validation and
// fails with ValidationFailedError when the course content is not ready.
func (s *Service) Submit(courseID uint, actor *models.User) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}

	if !s.isAuthorOrAdmin(course, actor) {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusSubmitted) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusSubmitted}
	}

	validation := Validate(course)
	course.Validation = datatypes.NewJSONType(validation)
	course.QualityScore = validation.Score
	if !validation.IsValid {
		// Persist the fresh validation result so the author sees what to fix
		if err := s.db.Model(course).Select("Validation", "QualityScore").Updates(course).Error; err != nil {
			log.Printf("[WORKFLOW] Failed to persist validation result for course %d: %v", course.ID, err)
		}
		return nil, &ValidationFailedError{Errors: validation.Errors}
	}

	from := course.Status
	course.Status = courseModels.StatusSubmitted
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(course, courseModels.ActionSubmitted, from, course.Status, actor, "Submitted for review", nil)
	s.notifier.CourseSubmitted(course, s.lookupAuthor(course))
	return course, nil
}

// StartReview marks a submitted course as being actively reviewed
func (s *Service) StartReview(courseID uint, actor *models.User) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusUnderReview) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusUnderReview}
	}

	from := course.Status
	course.Status = courseModels.StatusUnderReview
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(course, courseModels.ActionReviewStarted, from, course.Status, actor, "Review started", nil)
	return course, nil
}

// Approve records the reviewer's decision and publishes the course in one
// step. Auto-publish is intentional: approval means go-live, but both
// conceptual steps stay auditable as separate history entries.
func (s *Service) Approve(courseID uint, actor *models.User, input FeedbackInput) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusApproved) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusApproved}
	}

	feedback := buildFeedback(actor, input, defaultApproveCriterionScore)
	from := course.Status

	course.ApprovalFeedback = datatypes.NewJSONType(feedback)
	course.QualityScore = feedback.OverallScore
	course.Status = courseModels.StatusPublished
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(feedback)
	s.recordHistory(course, courseModels.ActionApproved, from, courseModels.StatusApproved, actor, "Course approved", metadata)
	s.recordHistory(course, courseModels.ActionPublished, courseModels.StatusApproved, courseModels.StatusPublished, actor, "Auto-published on approval", nil)
	s.snapshotVersion(course, actor)

	s.notifier.CourseApproved(course, s.lookupAuthor(course), feedback)
	return course, nil
}

// Reject records the reviewer's decision and returns the course to the
// author with the stated reason.
func (s *Service) Reject(courseID uint, actor *models.User, input FeedbackInput, reason string) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusRejected) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusRejected}
	}

	feedback := buildFeedback(actor, input, defaultRejectCriterionScore)
	from := course.Status

	course.ApprovalFeedback = datatypes.NewJSONType(feedback)
	course.RejectionReason = reason
	course.QualityScore = feedback.OverallScore
	course.Status = courseModels.StatusRejected
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(map[string]interface{}{"reason": reason})
	s.recordHistory(course, courseModels.ActionRejected, from, course.Status, actor, reason, metadata)
	s.notifier.CourseRejected(course, s.lookupAuthor(course), reason)
	return course, nil
}

// Publish moves an approved course live. Used when auto-publish was bypassed;
// a version snapshot is taken before the transition.
func (s *Service) Publish(courseID uint, actor *models.User) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if course.Status != courseModels.StatusApproved {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusPublished}
	}

	s.snapshotVersion(course, actor)

	from := course.Status
	course.Status = courseModels.StatusPublished
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(course, courseModels.ActionPublished, from, course.Status, actor, "Course published", nil)
	return course, nil
}

// Archive retires a published course from the catalog
func (s *Service) Archive(courseID uint, actor *models.User, reason string) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !s.isAuthorOrAdmin(course, actor) {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusArchived) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusArchived}
	}

	from := course.Status
	course.Status = courseModels.StatusArchived
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(course, courseModels.ActionArchived, from, course.Status, actor, reason, nil)
	return course, nil
}

// Suspend pulls a published course offline without archiving it
func (s *Service) Suspend(courseID uint, actor *models.User, reason string) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusSuspended) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusSuspended}
	}

	from := course.Status
	course.Status = courseModels.StatusSuspended
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(course, courseModels.ActionSuspended, from, course.Status, actor, reason, nil)
	return course, nil
}

// Reinstate returns an archived or suspended course to the catalog
func (s *Service) Reinstate(courseID uint, actor *models.User) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusPublished) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusPublished}
	}

	from := course.Status
	course.Status = courseModels.StatusPublished
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(course, courseModels.ActionReinstated, from, course.Status, actor, "Course reinstated", nil)
	return course, nil
}

// Reopen returns a rejected course to DRAFT so the author can revise it
func (s *Service) Reopen(courseID uint, actor *models.User) (*courseModels.Course, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !s.isAuthorOrAdmin(course, actor) {
		return nil, ErrUnauthorized
	}
	if !CanTransition(course.Status, courseModels.StatusDraft) {
		return nil, &InvalidTransitionError{From: course.Status, To: courseModels.StatusDraft}
	}

	from := course.Status
	course.Status = courseModels.StatusDraft
	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}

	s.recordHistory(course, courseModels.ActionReopened, from, course.Status, actor, "Reopened for revision", nil)
	return course, nil
}

// RunValidation re-scores the course and persists the result without
// touching the lifecycle status
func (s *Service) RunValidation(courseID uint) (courseModels.ValidationResult, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return courseModels.ValidationResult{}, err
	}
	validation := Validate(course)
	course.Validation = datatypes.NewJSONType(validation)
	course.QualityScore = validation.Score
	if err := s.db.Model(course).Select("Validation", "QualityScore").Updates(course).Error; err != nil {
		return courseModels.ValidationResult{}, err
	}
	return validation, nil
}

// ── internals ──

func (s *Service) loadCourse(courseID uint) (*courseModels.Course, error) {
	var course courseModels.Course
	err := s.db.Preload("Sections", "is_deleted = false").
		Preload("Sections.Lessons", "is_deleted = false").
		Where("id = ? AND is_deleted = false", courseID).
		First(&course).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (s *Service) isAuthorOrAdmin(course *courseModels.Course, actor *models.User) bool {
	return actor.IsAdmin() || actor.ID == course.AuthorID
}

func (s *Service) actorRole(course *courseModels.Course, actor *models.User) string {
	if actor.IsAdmin() {
		return courseModels.RoleAdmin
	}
	if actor.ID == course.AuthorID {
		return courseModels.RoleAuthor
	}
	return courseModels.RoleUser
}

func (s *Service) recordHistory(course *courseModels.Course, action, from, to string, actor *models.User, reason string, metadata []byte) {
	entry := courseModels.WorkflowHistory{
		CourseID:        course.ID,
		Action:          action,
		FromStatus:      from,
		ToStatus:        to,
		PerformedBy:     actor.ID,
		PerformedByRole: s.actorRole(course, actor),
		Reason:          reason,
		Metadata:        string(metadata),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("[WORKFLOW] Failed to record history for course %d action %s: %v", course.ID, action, err)
	}
}

func (s *Service) snapshotVersion(course *courseModels.Course, actor *models.User) {
	var count int64
	s.db.Model(&courseModels.CourseVersion{}).Where("course_id = ?", course.ID).Count(&count)

	snapshot, err := json.Marshal(course)
	if err != nil {
		log.Printf("[WORKFLOW] Failed to snapshot course %d: %v", course.ID, err)
		return
	}

	version := courseModels.CourseVersion{
		CourseID:      course.ID,
		VersionNumber: int(count) + 1,
		Snapshot:      string(snapshot),
		PublishedBy:   actor.ID,
		QualityScore:  course.QualityScore,
	}
	if err := s.db.Create(&version).Error; err != nil {
		log.Printf("[WORKFLOW] Failed to store version snapshot for course %d: %v", course.ID, err)
	}
}

func (s *Service) lookupAuthor(course *courseModels.Course) *models.User {
	var author models.User
	if err := s.db.Where("id = ? AND is_deleted = false", course.AuthorID).First(&author).Error; err != nil {
		return nil
	}
	return &author
}

func buildFeedback(actor *models.User, input FeedbackInput, defaultScore int) courseModels.ReviewFeedback {
	scores := make(map[string]int, len(reviewCriteria))
	for _, criterion := range reviewCriteria {
		if v, ok := input.CriterionScores[criterion]; ok {
			scores[criterion] = v
		} else {
			scores[criterion] = defaultScore
		}
	}

	total := 0
	for _, v := range scores {
		total += v
	}

	return courseModels.ReviewFeedback{
		ReviewerID:      actor.ID,
		ReviewerName:    actor.Name,
		CriterionScores: scores,
		Strengths:       input.Strengths,
		Improvements:    input.Improvements,
		OverallScore:    total / len(reviewCriteria),
		ReviewedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}
