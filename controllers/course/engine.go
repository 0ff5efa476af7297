package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/workflow"

	"github.com/gofiber/fiber/v2"
)

// Lifecycle is the course state machine shared by the handlers in this
// package. Wired once at startup.
var Lifecycle *workflow.Service

// Setup injects the lifecycle engine
func Setup(lifecycle *workflow.Service) {
	Lifecycle = lifecycle
}

// currentUser resolves the authenticated user from the JWT context
func currentUser(c *fiber.Ctx) (*models.User, error) {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return nil, fiber.ErrUnauthorized
	}
	return &user, nil
}

// requireAdmin resolves the authenticated user and rejects non-admins
func requireAdmin(c *fiber.Ctx) (*models.User, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, fiber.ErrForbidden
	}
	return user, nil
}

func unauthorized(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
}

func forbidden(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
}
