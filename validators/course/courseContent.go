package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

var validLessonTypes = map[string]bool{"VIDEO": true, "TEXT": true, "QUIZ": true, "ASSIGNMENT": true}

// SectionID validates the :courseId and :sectionId route parameters
func SectionID() fiber.Handler {
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

// LessonID validates the :courseId and :lessonId route parameters
func LessonID() fiber.Handler {
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

// Section validates a section create/update payload. Updates carry the
// :sectionId parameter and allow partial fields.
func Section(withSectionID bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		var sectionID uint
		if withSectionID {
			sectionID, ok = parseIDParam(c, "sectionId")
			if !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Section ID!", nil)
			}
		}

		reqData := new(struct {
			Title           string `json:"title"`
			Description     string `json:"description"`
			OrderIndex      int    `json:"order_index"`
			RequiredLessons []uint `json:"required_lessons"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if reqData.Title == "" {
			if !withSectionID {
				errors["title"] = "Title is required!"
			}
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}

		for _, lessonID := range reqData.RequiredLessons {
			if lessonID == 0 {
				errors["required_lessons"] = "Required lesson IDs must be positive!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		if withSectionID {
			c.Locals("sectionID", sectionID)
		}
		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

// Lesson validates a lesson create/update payload. Creates live under a
// section, updates address the lesson directly.
func Lesson(withLessonID bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		var sectionID, lessonID uint
		if withLessonID {
			lessonID, ok = parseIDParam(c, "lessonId")
			if !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
			}
		} else {
			sectionID, ok = parseIDParam(c, "sectionId")
			if !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Section ID!", nil)
			}
		}

		reqData := new(struct {
			Title           string `json:"title"`
			Type            string `json:"type"`
			TextContent     string `json:"text_content"`
			VideoURL        string `json:"video_url"`
			DurationMinutes int    `json:"duration_minutes"`
			OrderIndex      int    `json:"order_index"`
			HasCaptions     bool   `json:"has_captions"`
			Transcript      string `json:"transcript"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Type = strings.ToUpper(strings.TrimSpace(reqData.Type))
		reqData.VideoURL = strings.TrimSpace(reqData.VideoURL)

		if reqData.Title == "" {
			if !withLessonID {
				errors["title"] = "Title is required!"
			}
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.Type == "" {
			if !withLessonID {
				errors["type"] = "Lesson type is required!"
			}
		} else if !validLessonTypes[reqData.Type] {
			errors["type"] = "Type must be VIDEO, TEXT, QUIZ, or ASSIGNMENT!"
		}

		if reqData.Type == "VIDEO" && reqData.VideoURL == "" {
			errors["video_url"] = "Video URL is required for video lessons!"
		}
		if reqData.VideoURL != "" {
			if err := validate.Var(reqData.VideoURL, "url"); err != nil {
				errors["video_url"] = "Video URL must be a valid URL!"
			}
		}

		if reqData.DurationMinutes < 0 {
			errors["duration_minutes"] = "Duration must not be negative!"
		}

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		if withLessonID {
			c.Locals("lessonID", lessonID)
		} else {
			c.Locals("sectionID", sectionID)
		}
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// Quiz validates a quiz create payload attached to a section
func Quiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		sectionID, ok := parseIDParam(c, "sectionId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Section ID!", nil)
		}

		reqData := new(struct {
			Title          string `json:"title"`
			MaxScore       int    `json:"max_score"`
			PassPercentage int    `json:"pass_percentage"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}

		if reqData.MaxScore < 0 {
			errors["max_score"] = "Max score must not be negative!"
		}

		if reqData.PassPercentage < 0 || reqData.PassPercentage > 100 {
			errors["pass_percentage"] = "Pass percentage must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("sectionID", sectionID)
		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}
