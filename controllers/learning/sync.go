package learningController

import (
	"lms/middleware"
	progressModels "lms/models/progress"

	"github.com/gofiber/fiber/v2"
)

// SyncProgress reconciles a client-side progress snapshot against the
// server document and reports the resolution
func SyncProgress(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	snapshot, ok := c.Locals("validatedSnapshot").(*progressModels.ClientSnapshot)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := Consistency.SyncProgressState(userId, courseID, *snapshot)
	if err != nil {
		return progressError(c, err)
	}

	message := "Server state is authoritative."
	if result.Resolution == progressModels.ResolutionMerged {
		message = "Client snapshot merged."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// CheckConsistency runs the reconciliation sweep for the caller's progress
// in one course and reports any repairs made
func CheckConsistency(c *fiber.Ctx) error {
	userId, courseID, ferr := requireEnrollment(c)
	if ferr != nil {
		return ferr
	}

	report, err := Consistency.EnsureCourseProgressConsistency(userId, courseID)
	if err != nil {
		return progressError(c, err)
	}

	message := "Progress is consistent."
	if report.WasInconsistent {
		message = "Progress repaired."
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, report)
}
