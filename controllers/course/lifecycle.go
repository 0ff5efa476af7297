package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/workflow"

	"github.com/gofiber/fiber/v2"
)

// lifecycleError maps engine errors onto HTTP responses
func lifecycleError(c *fiber.Ctx, err error) error {
	var invalid *workflow.InvalidTransitionError
	var failed *workflow.ValidationFailedError

	switch {
	case errors.Is(err, workflow.ErrCourseNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	case errors.Is(err, workflow.ErrUnauthorized):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not allowed to perform this action!", nil)
	case errors.As(err, &invalid):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, invalid.Error(), nil)
	case errors.As(err, &failed):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Course validation failed!", fiber.Map{
			"errors": failed.Errors,
		})
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
}

// SubmitCourse moves a draft into the review queue
func SubmitCourse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := Lifecycle.Submit(courseID, user)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course submitted for review.", course)
}

// StartCourseReview marks a submitted course as under active review
func StartCourseReview(c *fiber.Ctx) error {
	user, err := requireAdmin(c)
	if err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := Lifecycle.StartReview(courseID, user)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review started.", course)
}

// ApproveCourse records the review feedback and auto-publishes the course
func ApproveCourse(c *fiber.Ctx) error {
	user, err := requireAdmin(c)
	if err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)
	input, _ := c.Locals("validatedFeedback").(*workflow.FeedbackInput)
	if input == nil {
		input = &workflow.FeedbackInput{}
	}

	course, err := Lifecycle.Approve(courseID, user, *input)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course approved and published.", course)
}

// RejectCourse records the review feedback and sends the course back
func RejectCourse(c *fiber.Ctx) error {
	user, err := requireAdmin(c)
	if err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)
	reason := c.Locals("rejectionReason").(string)
	input, _ := c.Locals("validatedFeedback").(*workflow.FeedbackInput)
	if input == nil {
		input = &workflow.FeedbackInput{}
	}

	course, err := Lifecycle.Reject(courseID, user, *input, reason)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course rejected.", course)
}

// PublishCourse publishes an approved course that was not auto-published
func PublishCourse(c *fiber.Ctx) error {
	user, err := requireAdmin(c)
	if err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := Lifecycle.Publish(courseID, user)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// ArchiveCourse retires a published course
func ArchiveCourse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)
	reason, _ := c.Locals("actionReason").(string)

	course, err := Lifecycle.Archive(courseID, user, reason)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course archived.", course)
}

// SuspendCourse takes a published course offline for moderation
func SuspendCourse(c *fiber.Ctx) error {
	user, err := requireAdmin(c)
	if err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)
	reason, _ := c.Locals("actionReason").(string)

	course, err := Lifecycle.Suspend(courseID, user, reason)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course suspended.", course)
}

// ReinstateCourse brings a suspended course back online
func ReinstateCourse(c *fiber.Ctx) error {
	user, err := requireAdmin(c)
	if err != nil {
		if err == fiber.ErrForbidden {
			return forbidden(c)
		}
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := Lifecycle.Reinstate(courseID, user)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course reinstated.", course)
}

// ReopenCourse returns a rejected or archived course to draft for editing
func ReopenCourse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := Lifecycle.Reopen(courseID, user)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course reopened as draft.", course)
}

// ValidateCourse runs the readiness check without changing state
func ValidateCourse(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	result, err := Lifecycle.RunValidation(courseID)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Validation complete.", result)
}

// GetWorkflowHistory returns the append-only audit trail for a course
func GetWorkflowHistory(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.AuthorID != user.ID && !user.IsAdmin() {
		return forbidden(c)
	}

	var history []courseModels.WorkflowHistory
	if err := database.Database.Db.Where("course_id = ?", courseID).
		Order("created_at asc").Find(&history).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Workflow history fetched successfully!", history)
}

// GetCourseVersions lists the published snapshots of a course
func GetCourseVersions(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	courseID := c.Locals("courseID").(uint)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.AuthorID != user.ID && !user.IsAdmin() {
		return forbidden(c)
	}

	var versions []courseModels.CourseVersion
	if err := database.Database.Db.Where("course_id = ?", courseID).
		Order("version_number desc").Find(&versions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch versions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course versions fetched successfully!", versions)
}
