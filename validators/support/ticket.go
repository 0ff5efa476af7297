package supportValidators

import (
	"regexp"
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

var (
	validPriorities     = map[string]bool{"low": true, "medium": true, "high": true}
	validCategories     = map[string]bool{"general": true, "content": true, "playback": true, "certificate": true}
	validTicketStatuses = map[string]bool{"open": true, "in_progress": true, "closed": true}
)

func CreateSupportTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
			Category    string `json:"category"`
			CourseID    *uint  `json:"course_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else {
			if len(reqData.Title) < 3 {
				errors["title"] = "Title must be at least 3 characters long!"
			}
			if len(reqData.Title) > 100 {
				errors["title"] = "Title must not exceed 100 characters!"
			}
			if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Title); matched {
				errors["title"] = "Title contains invalid characters (e.g., <, >, {, })!"
			}
		}

		reqData.Description = strings.TrimSpace(reqData.Description)
		if reqData.Description == "" {
			errors["description"] = "Description is required!"
		} else if len(reqData.Description) < 10 {
			errors["description"] = "Description must be at least 10 characters long!"
		} else if len(reqData.Description) > 5000 {
			errors["description"] = "Description must not exceed 5000 characters!"
		}

		reqData.Priority = strings.ToLower(strings.TrimSpace(reqData.Priority))
		if reqData.Priority != "" && !validPriorities[reqData.Priority] {
			errors["priority"] = "Priority must be low, medium, or high!"
		}

		reqData.Category = strings.ToLower(strings.TrimSpace(reqData.Category))
		if reqData.Category != "" && !validCategories[reqData.Category] {
			errors["category"] = "Category must be general, content, playback, or certificate!"
		}

		if reqData.CourseID != nil && *reqData.CourseID == 0 {
			errors["course_id"] = "Course ID must be positive!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSupportTicket", reqData)
		return c.Next()
	}
}

func TicketList() fiber.Handler {
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

		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))
		if reqData.Status != "" && !validTicketStatuses[reqData.Status] {
			errors["status"] = "Status must be open, in_progress, or closed!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTicketList", reqData)
		return c.Next()
	}
}

func TicketID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params("ticketId"))
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Ticket ID!", nil)
		}

		c.Locals("ticketID", uint(id))
		return c.Next()
	}
}
