package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

var validStatuses = map[string]bool{
	"DRAFT":        true,
	"SUBMITTED":    true,
	"UNDER_REVIEW": true,
	"APPROVED":     true,
	"PUBLISHED":    true,
	"REJECTED":     true,
	"ARCHIVED":     true,
	"SUSPENDED":    true,
}

// AdminCourseList validates the admin course listing query
func AdminCourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page   *int   `json:"page"`
			Limit  *int   `json:"limit"`
			Status string `json:"status"`
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

		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		if reqData.Status != "" && !validStatuses[reqData.Status] {
			errors["status"] = "Unknown course status!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdminList", reqData)
		return c.Next()
	}
}

// StudentProgress validates the :userId and :courseId parameters for the
// admin progress lookup
func StudentProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := parseIDParam(c, "userId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("targetUserID", userID)
		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// Review validates a course rating payload
func Review() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Rating < 1 || reqData.Rating > 5 {
			errors["rating"] = "Rating must be between 1 and 5!"
		}

		reqData.Comment = strings.TrimSpace(reqData.Comment)
		if len(reqData.Comment) > 2000 {
			errors["comment"] = "Comment must be at most 2000 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}
