package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateCourseReview records a learner's rating for an enrolled course and
// refreshes the course's denormalized rating aggregate
func CreateCourseReview(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedReview").(*struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Only enrolled learners may review
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?",
		user.ID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course before reviewing it!", nil)
	}

	var review courseModels.CourseReview
	err = database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?",
		user.ID, courseID, false).First(&review).Error

	if err == nil {
		review.Rating = reqData.Rating
		review.Comment = reqData.Comment
		if err := database.Database.Db.Save(&review).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update review!", nil)
		}
	} else {
		review = courseModels.CourseReview{
			UserID:   user.ID,
			CourseID: courseID,
			Rating:   reqData.Rating,
			Comment:  reqData.Comment,
		}
		if err := database.Database.Db.Create(&review).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create review!", nil)
		}
	}

	refreshRatingAggregate(database.Database.Db, courseID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review saved successfully!", review)
}

// GetCourseReviews lists reviews for a course with reviewer names
func GetCourseReviews(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var reviews []courseModels.CourseReview
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("created_at desc").Limit(100).Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", reviews)
}

// refreshRatingAggregate recomputes the course's average rating
func refreshRatingAggregate(db *gorm.DB, courseID uint) {
	var stats struct {
		Avg   float64
		Count int64
	}
	db.Model(&courseModels.CourseReview{}).
		Select("COALESCE(AVG(rating),0) as avg, COUNT(*) as count").
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Scan(&stats)

	db.Model(&courseModels.Course{}).Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"rating_avg":   stats.Avg,
			"rating_count": stats.Count,
		})
}
