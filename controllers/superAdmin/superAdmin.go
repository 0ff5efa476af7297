package superAdminController

import (
	"log"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

func requireAdminRole(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	if user.Role != "ADMIN" && user.Role != "SUPER-ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Admin access required!", nil)
	}
	return nil
}

func UserList(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Retrieve validated request data
	reqData, ok := c.Locals("validateUserList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (*reqData.Page - 1) * (*reqData.Limit)

	var users []models.User
	var total int64

	// Fetch user list excluding SUPER-ADMIN
	if err := database.Database.Db.
		Where("is_deleted = ? AND role != ?", false, "SUPER-ADMIN").
		Offset(offset).
		Limit(*reqData.Limit).
		Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	// Count total records
	database.Database.Db.
		Model(&models.User{}).
		Where("is_deleted = ? AND role != ?", false, "SUPER-ADMIN").
		Count(&total)

	// Response structure
	response := map[string]interface{}{
		"users": users,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  *reqData.Page,
			"limit": *reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", response)
}

// RegisterAuthor creates a pre-verified course author account
func RegisterAuthor(c *fiber.Ctx) error {
	if ferr := requireAdminRole(c); ferr != nil {
		return ferr
	}

	reqData, ok := c.Locals("validatedAuthor").(*struct {
		Mobile   string `json:"mobile"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Check if mobile already exists
	if err := db.Where("mobile = ?", reqData.Mobile).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Mobile number is already registered!", nil)
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:              reqData.Name,
		Email:             reqData.Email,
		Mobile:            reqData.Mobile,
		Password:          string(hashedPassword),
		Role:              "AUTHOR",
		IsMobileVerified:  true,
		IsEmailVerified:   true,
		NotificationPrefs: datatypes.NewJSONType(models.DefaultNotificationPreferences()),
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving author to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register author!", nil)
	}

	newUser.Password = ""

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Author registered successfully.", newUser)
}

// UpdateUserRole promotes or demotes a user. SUPER-ADMIN accounts are not
// reachable through this endpoint.
func UpdateUserRole(c *fiber.Ctx) error {
	if ferr := requireAdminRole(c); ferr != nil {
		return ferr
	}

	reqData, ok := c.Locals("validatedRoleUpdate").(*struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var target models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND role != ?",
		reqData.UserID, false, "SUPER-ADMIN").First(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	target.Role = reqData.Role
	if err := database.Database.Db.Save(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role!", nil)
	}

	target.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully.", target)
}

// BlockUser toggles the blocked flag on an account
func BlockUser(c *fiber.Ctx) error {
	if ferr := requireAdminRole(c); ferr != nil {
		return ferr
	}

	reqData, ok := c.Locals("validatedBlockUpdate").(*struct {
		UserID  uint `json:"user_id"`
		Blocked bool `json:"blocked"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var target models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND role != ?",
		reqData.UserID, false, "SUPER-ADMIN").First(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	target.IsBlocked = reqData.Blocked
	if !reqData.Blocked {
		target.BlockedUntil = nil
		target.FailedLoginAttempts = 0
	}
	if err := database.Database.Db.Save(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	message := "User blocked successfully."
	if !reqData.Blocked {
		message = "User unblocked successfully."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, nil)
}

// PermissionsByUserID lists a user's seeded permissions
func PermissionsByUserID(c *fiber.Ctx) error {
	if ferr := requireAdminRole(c); ferr != nil {
		return ferr
	}

	userIDParam, ok := c.Locals("validatedUserId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var permissions []models.Permission
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = ?", userIDParam, false).
		Find(&permissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch permissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions fetched successfully.", permissions)
}
