package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"github.com/gofiber/fiber/v2"
)

// AdminGetReviewQueue lists courses waiting for a reviewer
func AdminGetReviewQueue(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	var courses []courseModels.Course
	if err := database.Database.Db.
		Where("status IN ? AND is_deleted = ?", []string{courseModels.StatusSubmitted, courseModels.StatusUnderReview}, false).
		Order("updated_at asc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch review queue!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review queue fetched successfully!", courses)
}

// AdminGetAllCourses lists courses in every state for admins
func AdminGetAllCourses(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	reqData, ok := c.Locals("validatedAdminList").(*struct {
		Page   *int   `json:"page"`
		Limit  *int   `json:"limit"`
		Status string `json:"status"`
	})

	page := 1
	limit := 10
	if ok && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if ok && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)
	if ok && reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminGetCourseEnrollments lists enrolled learners for a course
func AdminGetCourseEnrollments(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	type row struct {
		Enrollment courseModels.Enrollment `json:"enrollment"`
		UserName   string                  `json:"user_name"`
		UserEmail  string                  `json:"user_email"`
	}

	result := make([]row, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var user models.User
		if err := database.Database.Db.Select("id, name, email").First(&user, enrollment.UserID).Error; err != nil {
			continue
		}
		result = append(result, row{Enrollment: enrollment, UserName: user.Name, UserEmail: user.Email})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", result)
}

// AdminGetStudentProgress returns the full progress document of one learner
// in one course
func AdminGetStudentProgress(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	userID := c.Locals("targetUserID").(uint)
	courseID := c.Locals("courseID").(uint)

	var doc progressModels.Progress
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&doc).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Progress not found!", nil)
	}

	var enrollment courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student progress fetched successfully!", fiber.Map{
		"progress":   doc,
		"enrollment": enrollment,
	})
}

// AdminDashboardStats aggregates headline platform figures
func AdminDashboardStats(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	db := database.Database.Db

	var totalUsers, totalCourses, publishedCourses, pendingReview int64
	var activeEnrollments, completedEnrollments, certificatesIssued int64

	db.Model(&models.User{}).Where("is_deleted = ?", false).Count(&totalUsers)
	db.Model(&courseModels.Course{}).Where("is_deleted = ?", false).Count(&totalCourses)
	db.Model(&courseModels.Course{}).Where("status = ? AND is_deleted = ?", courseModels.StatusPublished, false).Count(&publishedCourses)
	db.Model(&courseModels.Course{}).Where("status IN ? AND is_deleted = ?",
		[]string{courseModels.StatusSubmitted, courseModels.StatusUnderReview}, false).Count(&pendingReview)
	db.Model(&courseModels.Enrollment{}).Where("status = ? AND is_deleted = ?", courseModels.EnrollmentActive, false).Count(&activeEnrollments)
	db.Model(&courseModels.Enrollment{}).Where("status = ? AND is_deleted = ?", courseModels.EnrollmentCompleted, false).Count(&completedEnrollments)
	db.Model(&courseModels.Certificate{}).Where("is_deleted = ?", false).Count(&certificatesIssued)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"total_users":           totalUsers,
		"total_courses":         totalCourses,
		"published_courses":     publishedCourses,
		"pending_review":        pendingReview,
		"active_enrollments":    activeEnrollments,
		"completed_enrollments": completedEnrollments,
		"certificates_issued":   certificatesIssued,
	})
}
