package userController

import (
	"errors"
	"strings"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GetProfile returns the current user's profile with learning stats
func GetProfile(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var enrolledCount, completedCount, certificateCount int64
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND status <> ? AND is_deleted = ?", userId, courseModels.EnrollmentDropped, false).
		Count(&enrolledCount)
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND status = ? AND is_deleted = ?", userId, courseModels.EnrollmentCompleted, false).
		Count(&completedCount)
	database.Database.Db.Model(&courseModels.Certificate{}).
		Where("user_id = ?", userId).
		Count(&certificateCount)

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", fiber.Map{
		"user": user,
		"stats": fiber.Map{
			"enrolled_courses":  enrolledCount,
			"completed_courses": completedCount,
			"certificates":      certificateCount,
		},
	})
}

// UpdateProfile edits the user's display fields
func UpdateProfile(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProfile").(*struct {
		Name         string `json:"name"`
		Headline     string `json:"headline"`
		Bio          string `json:"bio"`
		ProfileImage string `json:"profile_image"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if reqData.Name != "" {
		user.Name = reqData.Name
	}
	if reqData.Headline != "" {
		user.Headline = reqData.Headline
	}
	if reqData.Bio != "" {
		user.Bio = reqData.Bio
	}
	if reqData.ProfileImage != "" {
		user.ProfileImage = reqData.ProfileImage
	}

	if err := database.Database.Db.Save(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

// UpdateNotificationPreferences merges a partial preference update into the
// stored preferences. Absent fields keep their current value.
func UpdateNotificationPreferences(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedNotificationPrefs").(*struct {
		EmailOnApproval    *bool `json:"email_on_approval"`
		EmailOnRejection   *bool `json:"email_on_rejection"`
		EmailOnMilestone   *bool `json:"email_on_milestone"`
		EmailOnCertificate *bool `json:"email_on_certificate"`
		WeeklyDigest       *bool `json:"weekly_digest"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	prefs := user.NotificationPrefs.Data()
	if reqData.EmailOnApproval != nil {
		prefs.EmailOnApproval = *reqData.EmailOnApproval
	}
	if reqData.EmailOnRejection != nil {
		prefs.EmailOnRejection = *reqData.EmailOnRejection
	}
	if reqData.EmailOnMilestone != nil {
		prefs.EmailOnMilestone = *reqData.EmailOnMilestone
	}
	if reqData.EmailOnCertificate != nil {
		prefs.EmailOnCertificate = *reqData.EmailOnCertificate
	}
	if reqData.WeeklyDigest != nil {
		prefs.WeeklyDigest = *reqData.WeeklyDigest
	}
	user.NotificationPrefs = datatypes.NewJSONType(prefs)

	if err := database.Database.Db.Save(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update preferences!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification preferences updated!", prefs)
}

// UpdateAccessibilityPreferences merges a partial accessibility update
func UpdateAccessibilityPreferences(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAccessibilityPrefs").(*struct {
		CaptionsByDefault  *bool   `json:"captions_by_default"`
		PreferredFontScale *int    `json:"preferred_font_scale"`
		ReducedMotion      *bool   `json:"reduced_motion"`
		PreferredLanguage  *string `json:"preferred_language"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	prefs := user.AccessibilityPrefs.Data()
	if reqData.CaptionsByDefault != nil {
		prefs.CaptionsByDefault = *reqData.CaptionsByDefault
	}
	if reqData.PreferredFontScale != nil {
		prefs.PreferredFontScale = *reqData.PreferredFontScale
	}
	if reqData.ReducedMotion != nil {
		prefs.ReducedMotion = *reqData.ReducedMotion
	}
	if reqData.PreferredLanguage != nil {
		prefs.PreferredLanguage = strings.TrimSpace(*reqData.PreferredLanguage)
	}
	user.AccessibilityPrefs = datatypes.NewJSONType(prefs)

	if err := database.Database.Db.Save(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update preferences!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Accessibility preferences updated!", prefs)
}

func GetLatestMaintenance(c *fiber.Ctx) error {
	var maintenance models.Maintenance

	if err := database.Database.Db.Order("created_at DESC").First(&maintenance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No maintenance record found", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Database error", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Latest maintenance record", maintenance)
}
