package supportControllers

import (
	"strings"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

func CreateSupportTicket(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedSupportTicket").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Category    string `json:"category"`
		CourseID    *uint  `json:"course_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// A course-linked ticket must reference a real course
	if reqData.CourseID != nil {
		var course courseModels.Course
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", *reqData.CourseID, false).First(&course).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
	}

	ticket := models.SupportTicket{
		UserID:      userId,
		CourseID:    reqData.CourseID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Status:      "open",
		Priority:    "medium",
		Category:    "general",
	}

	if reqData.Priority != "" {
		ticket.Priority = strings.ToLower(reqData.Priority)
	}
	if reqData.Category != "" {
		ticket.Category = strings.ToLower(reqData.Category)
	}

	if err := database.Database.Db.Create(&ticket).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create support ticket!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Support ticket created successfully!", ticket)
}

func TicketList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedTicketList").(*struct {
		Page   *int   `json:"page"`
		Limit  *int   `json:"limit"`
		Status string `json:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.SupportTicket{}).
		Where("user_id = ? AND is_deleted = ?", userId, false)

	if reqData.Status != "" {
		query = query.Where("status = ?", strings.ToLower(reqData.Status))
	}

	var total int64
	query.Count(&total)

	offset := (*reqData.Page - 1) * (*reqData.Limit)

	var tickets []models.SupportTicket
	if err := query.Order("created_at DESC").Offset(offset).Limit(*reqData.Limit).Find(&tickets).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tickets!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tickets fetched successfully!", fiber.Map{
		"tickets": tickets,
		"total":   total,
		"page":    *reqData.Page,
		"limit":   *reqData.Limit,
	})
}

func AdminTicketList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var admin models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&admin).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	if !admin.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Admin access required!", nil)
	}

	reqData, ok := c.Locals("validatedTicketList").(*struct {
		Page   *int   `json:"page"`
		Limit  *int   `json:"limit"`
		Status string `json:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := database.Database.Db.Model(&models.SupportTicket{}).Where("is_deleted = ?", false)
	if reqData.Status != "" {
		query = query.Where("status = ?", strings.ToLower(reqData.Status))
	}

	var total int64
	query.Count(&total)

	offset := (*reqData.Page - 1) * (*reqData.Limit)

	var tickets []struct {
		models.SupportTicket
		UserName  string `json:"user_name"`
		UserEmail string `json:"user_email"`
	}
	if err := query.
		Select("support_tickets.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = support_tickets.user_id").
		Order("support_tickets.created_at DESC").
		Offset(offset).Limit(*reqData.Limit).
		Scan(&tickets).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tickets!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tickets fetched successfully!", fiber.Map{
		"tickets": tickets,
		"total":   total,
		"page":    *reqData.Page,
		"limit":   *reqData.Limit,
	})
}

// CloseTicket lets the owner or an admin close an open ticket
func CloseTicket(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	ticketID, ok := c.Locals("ticketID").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Ticket ID!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var ticket models.SupportTicket
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", ticketID, false).First(&ticket).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}

	if ticket.UserID != userId && !user.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot close this ticket!", nil)
	}

	if ticket.Status == "closed" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Ticket is already closed!", nil)
	}

	ticket.Status = "closed"
	if err := database.Database.Db.Save(&ticket).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to close ticket!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ticket closed successfully!", ticket)
}
