package learningController

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/progress"

	"github.com/gofiber/fiber/v2"
)

// Engines wired at startup
var (
	Store       *progress.Store
	Consistency *progress.Consistency
)

// Setup injects the progress engines
func Setup(store *progress.Store, consistency *progress.Consistency) {
	Store = store
	Consistency = consistency
}

// requireEnrollment checks that the caller has an active or completed
// enrollment before any progress write
func requireEnrollment(c *fiber.Ctx) (uint, uint, error) {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return 0, 0, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND status <> ? AND is_deleted = ?",
		userId, courseID, courseModels.EnrollmentDropped, false).First(&enrollment).Error; err != nil {
		return 0, 0, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course first!", nil)
	}

	return userId, courseID, nil
}

// progressError maps engine errors onto HTTP responses
func progressError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, progress.ErrLessonNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found in this course!", nil)
	case errors.Is(err, progress.ErrSectionNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found in this course!", nil)
	case errors.Is(err, progress.ErrProgressNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No progress recorded yet!", nil)
	case errors.Is(err, progress.ErrWriteConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Progress was updated concurrently, please retry!", nil)
	case errors.Is(err, progress.ErrVerificationFailed):
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Progress write could not be verified, please retry!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}
}

// GetProgress returns the caller's progress document for a course
func GetProgress(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	doc, err := Store.GetOrCreate(userId, courseID)
	if err != nil {
		return progressError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", doc)
}

// CompleteLesson marks a lesson as completed
func CompleteLesson(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	lessonID := c.Locals("lessonID").(uint)

	doc, err := Store.CompleteLesson(userId, courseID, lessonID)
	if err != nil {
		return progressError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", doc)
}

// UpdateLessonProgress applies a generic lesson progress update
func UpdateLessonProgress(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	lessonID := c.Locals("lessonID").(uint)
	update, ok := c.Locals("validatedLessonUpdate").(*progress.LessonUpdate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := Store.UpdateLessonProgress(userId, courseID, lessonID, *update)
	if err != nil {
		return progressError(c, err)
	}

	message := "Lesson progress updated!"
	if result.Preserved {
		message = "Completed state preserved; downgrade ignored."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// UpdateVideoProgress applies video watch telemetry
func UpdateVideoProgress(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	lessonID := c.Locals("lessonID").(uint)
	telemetry, ok := c.Locals("validatedTelemetry").(*progress.VideoTelemetry)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := Store.UpdateVideoProgress(userId, courseID, lessonID, *telemetry)
	if err != nil {
		return progressError(c, err)
	}

	message := "Video progress updated!"
	if result.LessonCompleted {
		message = "Video watched, lesson completed!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// SubmitQuizAttempt records a graded quiz attempt
func SubmitQuizAttempt(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	quizID := c.Locals("quizID").(uint)

	// The quiz must belong to this course
	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?",
		quizID, courseID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found in this course!", nil)
	}

	submission, ok := c.Locals("validatedQuizAttempt").(*progress.QuizSubmission)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	aggregate, err := Store.RecordQuizAttempt(userId, courseID, quizID, *submission)
	if err != nil {
		return progressError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempt recorded!", aggregate)
}

// CompleteSection attempts to close out a section
func CompleteSection(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	sectionID := c.Locals("sectionID").(uint)

	result, err := Store.CompleteSection(userId, courseID, sectionID)
	if err != nil {
		return progressError(c, err)
	}

	message := "Section completed!"
	if !result.Completed {
		message = "Section incomplete: finish the remaining lessons first."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}
