package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published courses with optional filters
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCatalog").(*struct {
		Page     *int   `json:"page"`
		Limit    *int   `json:"limit"`
		Category string `json:"category"`
		Level    string `json:"level"`
		Search   string `json:"search"`
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

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("status = ? AND is_deleted = ?", courseModels.StatusPublished, false)

	if ok && reqData.Category != "" {
		db = db.Where("category = ?", reqData.Category)
	}
	if ok && reqData.Level != "" {
		db = db.Where("level = ?", reqData.Level)
	}
	if ok && reqData.Search != "" {
		db = db.Where("title ILIKE ?", "%"+reqData.Search+"%")
	}

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("rating_avg desc, created_at desc").Find(&courses).Error; err != nil {
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

// GetCourseDetails returns a published course with its sections and lessons.
// Authors and admins can also view their own unpublished courses.
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course courseModels.Course
	err := database.Database.Db.
		Preload("Sections", "is_deleted = ?", false).
		Preload("Sections.Lessons", "is_deleted = ?", false).
		Where("id = ? AND is_deleted = ?", courseID, false).
		First(&course).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.Status != courseModels.StatusPublished {
		user, uerr := currentUser(c)
		if uerr != nil || (course.AuthorID != user.ID && !user.IsAdmin()) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
	}

	var quizzes []courseModels.Quiz
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Find(&quizzes)

	var enrollmentCount int64
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&enrollmentCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":           course,
		"quizzes":          quizzes,
		"enrollment_count": enrollmentCount,
	})
}
