package courseValidator

import (
	"strings"

	"lms/middleware"
	"lms/workflow"

	"github.com/gofiber/fiber/v2"
)

func validateFeedback(reqData *workflow.FeedbackInput, errors map[string]string) {
	for criterion, score := range reqData.CriterionScores {
		if strings.TrimSpace(criterion) == "" {
			errors["criterion_scores"] = "Criterion names must not be empty!"
			break
		}
		if score < 0 || score > 100 {
			errors["criterion_scores"] = "Criterion scores must be between 0 and 100!"
			break
		}
	}
}

// Feedback validates the reviewer decision payload for approvals. The
// feedback body is optional; an empty body records an empty feedback.
func Feedback() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(workflow.FeedbackInput)
		if err := c.BodyParser(reqData); err != nil && err != fiber.ErrUnprocessableEntity {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		validateFeedback(reqData, errors)

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedFeedback", reqData)
		return c.Next()
	}
}

// Rejection validates the rejection payload. A reason is mandatory.
func Rejection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Reason          string         `json:"reason"`
			CriterionScores map[string]int `json:"criterion_scores"`
			Strengths       []string       `json:"strengths"`
			Improvements    []string       `json:"improvements"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Reason = strings.TrimSpace(reqData.Reason)
		if reqData.Reason == "" {
			errors["reason"] = "Rejection reason is required!"
		} else if len(reqData.Reason) < 10 {
			errors["reason"] = "Rejection reason must be at least 10 characters long!"
		}

		feedback := &workflow.FeedbackInput{
			CriterionScores: reqData.CriterionScores,
			Strengths:       reqData.Strengths,
			Improvements:    reqData.Improvements,
		}
		validateFeedback(feedback, errors)

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("rejectionReason", reqData.Reason)
		c.Locals("validatedFeedback", feedback)
		return c.Next()
	}
}

// ActionReason validates archive/suspend payloads. The reason is optional
// but bounded when present.
func ActionReason() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil && err != fiber.ErrUnprocessableEntity {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Reason = strings.TrimSpace(reqData.Reason)
		if len(reqData.Reason) > 500 {
			return middleware.ValidationErrorResponse(c, map[string]string{"reason": "Reason must be at most 500 characters long!"})
		}

		c.Locals("courseID", courseID)
		c.Locals("actionReason", reqData.Reason)
		return c.Next()
	}
}
