package userValidator

import (
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// UpdateProfile validates the profile edit payload. All fields are optional.
func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name         string `json:"name"`
			Headline     string `json:"headline"`
			Bio          string `json:"bio"`
			ProfileImage string `json:"profile_image"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Headline = strings.TrimSpace(reqData.Headline)
		reqData.ProfileImage = strings.TrimSpace(reqData.ProfileImage)

		if reqData.Name != "" && len(reqData.Name) < 2 {
			errors["name"] = "Name must be at least 2 characters long!"
		}

		if len(reqData.Headline) > 120 {
			errors["headline"] = "Headline must be at most 120 characters long!"
		}

		if len(reqData.Bio) > 5000 {
			errors["bio"] = "Bio must be at most 5000 characters long!"
		}

		if reqData.ProfileImage != "" {
			if err := validate.Var(reqData.ProfileImage, "url"); err != nil {
				errors["profile_image"] = "Profile image must be a valid URL!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}

// NotificationPreferences validates a partial notification settings update
func NotificationPreferences() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			EmailOnApproval    *bool `json:"email_on_approval"`
			EmailOnRejection   *bool `json:"email_on_rejection"`
			EmailOnMilestone   *bool `json:"email_on_milestone"`
			EmailOnCertificate *bool `json:"email_on_certificate"`
			WeeklyDigest       *bool `json:"weekly_digest"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.EmailOnApproval == nil && reqData.EmailOnRejection == nil &&
			reqData.EmailOnMilestone == nil && reqData.EmailOnCertificate == nil &&
			reqData.WeeklyDigest == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"preferences": "At least one preference field is required!",
			})
		}

		c.Locals("validatedNotificationPrefs", reqData)
		return c.Next()
	}
}

// AccessibilityPreferences validates a partial accessibility settings update
func AccessibilityPreferences() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CaptionsByDefault  *bool   `json:"captions_by_default"`
			PreferredFontScale *int    `json:"preferred_font_scale"`
			ReducedMotion      *bool   `json:"reduced_motion"`
			PreferredLanguage  *string `json:"preferred_language"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PreferredFontScale != nil {
			if err := validate.Var(*reqData.PreferredFontScale, "gte=50,lte=300"); err != nil {
				errors["preferred_font_scale"] = "Font scale must be between 50 and 300 percent!"
			}
		}

		if reqData.PreferredLanguage != nil {
			lang := strings.TrimSpace(*reqData.PreferredLanguage)
			if lang != "" {
				if err := validate.Var(lang, "bcp47_language_tag"); err != nil {
					errors["preferred_language"] = "Preferred language must be a valid language tag!"
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAccessibilityPrefs", reqData)
		return c.Next()
	}
}
