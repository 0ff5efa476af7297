package learningValidator

import (
	"strconv"
	"strings"
	"time"

	"lms/middleware"
	progressModels "lms/models/progress"
	"lms/progress"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// CourseID validates the :courseId route parameter
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// LessonComplete validates the :courseId and :lessonId parameters for
// marking a lesson complete
func LessonComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, ok := parseIDParam(c, "lessonId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// SectionComplete validates the :courseId and :sectionId parameters for
// closing out a section
func SectionComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		sectionID, ok := parseIDParam(c, "sectionId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Section ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("sectionID", sectionID)
		return c.Next()
	}
}

// LessonProgress validates an incremental lesson progress payload
func LessonProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, ok := parseIDParam(c, "lessonId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(progress.LessonUpdate)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TimeSpent < 0 {
			errors["time_spent"] = "Time spent must not be negative!"
		}

		if reqData.CurrentPosition != nil && *reqData.CurrentPosition < 0 {
			errors["current_position"] = "Position must not be negative!"
		}

		if reqData.PercentageWatched != nil {
			if err := validate.Var(*reqData.PercentageWatched, "gte=0,lte=100"); err != nil {
				errors["percentage_watched"] = "Percentage watched must be between 0 and 100!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

// VideoTelemetry validates a video watch-progress payload
func VideoTelemetry() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, ok := parseIDParam(c, "lessonId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(progress.VideoTelemetry)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PositionSeconds < 0 {
			errors["position_seconds"] = "Position must not be negative!"
		}

		if err := validate.Var(reqData.PercentageWatched, "gte=0,lte=100"); err != nil {
			errors["percentage_watched"] = "Percentage watched must be between 0 and 100!"
		}

		if reqData.ActiveSeconds < 0 {
			errors["active_seconds"] = "Active seconds must not be negative!"
		}

		for _, segment := range reqData.Segments {
			if segment.StartSeconds < 0 || segment.EndSeconds < segment.StartSeconds {
				errors["segments"] = "Watched segments must have start <= end and be non-negative!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedTelemetry", reqData)
		return c.Next()
	}
}

// QuizAttempt validates a quiz submission payload
func QuizAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		quizID, ok := parseIDParam(c, "quizId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Quiz ID!", nil)
		}

		reqData := new(progress.QuizSubmission)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Score < 0 {
			errors["score"] = "Score must not be negative!"
		}

		if reqData.MaxScore <= 0 {
			errors["max_score"] = "Max score must be positive!"
		} else if reqData.Score > reqData.MaxScore {
			errors["score"] = "Score must not exceed max score!"
		}

		if err := validate.Var(reqData.Percentage, "gte=0,lte=100"); err != nil {
			errors["percentage"] = "Percentage must be between 0 and 100!"
		}

		if reqData.SubmittedAt.IsZero() {
			reqData.SubmittedAt = time.Now()
		} else if reqData.SubmittedAt.After(time.Now().Add(5 * time.Minute)) {
			errors["submitted_at"] = "Submission time must not be in the future!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("quizID", quizID)
		c.Locals("validatedQuizAttempt", reqData)
		return c.Next()
	}
}

// Snapshot validates an offline client snapshot for sync
func Snapshot() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(progressModels.ClientSnapshot)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Var(reqData.OverallProgress, "gte=0,lte=100"); err != nil {
			errors["overall_progress"] = "Overall progress must be between 0 and 100!"
		}

		if reqData.TimeSpent < 0 {
			errors["time_spent"] = "Time spent must not be negative!"
		}

		if reqData.LastUpdated.IsZero() {
			errors["last_updated"] = "Snapshot timestamp is required!"
		}

		for _, lessonID := range reqData.CompletedLessons {
			if lessonID == 0 {
				errors["completed_lessons"] = "Lesson IDs must be positive!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedSnapshot", reqData)
		return c.Next()
	}
}
