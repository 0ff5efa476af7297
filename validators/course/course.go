package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"
	"lms/workflow"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

var validLevels = map[string]bool{"BEGINNER": true, "INTERMEDIATE": true, "ADVANCED": true}

// parseIDParam reads a positive integer route parameter
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

func validateCourseInput(reqData *workflow.CourseInput, partial bool) map[string]string {
	errors := make(map[string]string)

	reqData.Title = strings.TrimSpace(reqData.Title)
	reqData.Description = strings.TrimSpace(reqData.Description)
	reqData.Category = strings.TrimSpace(reqData.Category)
	reqData.Level = strings.ToUpper(strings.TrimSpace(reqData.Level))
	reqData.ThumbnailURL = strings.TrimSpace(reqData.ThumbnailURL)

	if reqData.Title == "" {
		if !partial {
			errors["title"] = "Title is required!"
		}
	} else if len(reqData.Title) < 3 {
		errors["title"] = "Title must be at least 3 characters long!"
	} else if len(reqData.Title) > 200 {
		errors["title"] = "Title must be at most 200 characters long!"
	}

	if reqData.Description == "" {
		if !partial {
			errors["description"] = "Description is required!"
		}
	} else if len(reqData.Description) < 5 {
		errors["description"] = "Description must be at least 5 characters long!"
	}

	if reqData.Category == "" && !partial {
		errors["category"] = "Category is required!"
	}

	if reqData.Level == "" {
		if !partial {
			errors["level"] = "Level is required!"
		}
	} else if !validLevels[reqData.Level] {
		errors["level"] = "Level must be BEGINNER, INTERMEDIATE, or ADVANCED!"
	}

	if reqData.ThumbnailURL != "" {
		if err := validate.Var(reqData.ThumbnailURL, "url"); err != nil {
			errors["thumbnail_url"] = "Thumbnail must be a valid URL!"
		}
	}

	return errors
}

// CreateCourse validates a new course payload
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(workflow.CourseInput)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validateCourseInput(reqData, false); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates a course update payload. Empty fields are left
// unchanged by the controller, so only non-empty values are checked.
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(workflow.CourseInput)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validateCourseInput(reqData, true); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// CourseList validates pagination for the author's course listing
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		} else if *reqData.Limit > 100 {
			errors["limit"] = "Limit must be at most 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

// Catalog validates the public catalog query
func Catalog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page     *int   `json:"page"`
			Limit    *int   `json:"limit"`
			Category string `json:"category"`
			Level    string `json:"level"`
			Search   string `json:"search"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		} else if *reqData.Limit > 100 {
			errors["limit"] = "Limit must be at most 100!"
		}

		reqData.Category = strings.TrimSpace(reqData.Category)
		reqData.Level = strings.ToUpper(strings.TrimSpace(reqData.Level))
		reqData.Search = strings.TrimSpace(reqData.Search)

		if reqData.Level != "" && !validLevels[reqData.Level] {
			errors["level"] = "Level must be BEGINNER, INTERMEDIATE, or ADVANCED!"
		}

		if len(reqData.Search) > 100 {
			errors["search"] = "Search term is too long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCatalog", reqData)
		return c.Next()
	}
}
