package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates lists the caller's issued certificates
func GetUserCertificates(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", user.ID, false).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	type certified struct {
		Certificate courseModels.Certificate `json:"certificate"`
		CourseTitle string                   `json:"course_title"`
	}

	result := make([]certified, 0, len(certificates))
	for _, cert := range certificates {
		var course courseModels.Course
		title := ""
		if err := database.Database.Db.Select("title").First(&course, cert.CourseID).Error; err == nil {
			title = course.Title
		}
		result = append(result, certified{Certificate: cert, CourseTitle: title})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", result)
}

// VerifyCertificate resolves a certificate by its public number. No auth:
// employers use this to check authenticity.
func VerifyCertificate(c *fiber.Ctx) error {
	number := c.Params("number")
	if number == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate number is required!", nil)
	}

	var cert courseModels.Certificate
	if err := database.Database.Db.Where("certificate_number = ? AND is_deleted = ?", number, false).
		First(&cert).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	var course courseModels.Course
	database.Database.Db.Select("id, title, category, level").First(&course, cert.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid.", fiber.Map{
		"certificate_number": cert.CertificateNumber,
		"final_grade":        cert.FinalGrade,
		"issued_at":          cert.IssuedAt,
		"course":             course,
	})
}
