package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up the review queue and lifecycle decision
// routes. Role checks happen in the controllers.
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	// Review queue and listings
	adminGroup.Get("/queue", middleware.JWTMiddleware, controllers.AdminGetReviewQueue)
	adminGroup.Get("/list", validators.AdminCourseList(), middleware.JWTMiddleware, controllers.AdminGetAllCourses)

	// Lifecycle decisions
	adminGroup.Post("/:courseId/review/start", validators.CourseID(), middleware.JWTMiddleware, controllers.StartCourseReview)
	adminGroup.Post("/:courseId/approve", validators.Feedback(), middleware.JWTMiddleware, controllers.ApproveCourse)
	adminGroup.Post("/:courseId/reject", validators.Rejection(), middleware.JWTMiddleware, controllers.RejectCourse)
	adminGroup.Post("/:courseId/publish", validators.CourseID(), middleware.JWTMiddleware, controllers.PublishCourse)
	adminGroup.Post("/:courseId/archive", validators.ActionReason(), middleware.JWTMiddleware, controllers.ArchiveCourse)
	adminGroup.Post("/:courseId/suspend", validators.ActionReason(), middleware.JWTMiddleware, controllers.SuspendCourse)
	adminGroup.Post("/:courseId/reinstate", validators.CourseID(), middleware.JWTMiddleware, controllers.ReinstateCourse)

	// Enrollment oversight
	adminGroup.Get("/:courseId/enrollments", validators.CourseID(), middleware.JWTMiddleware, controllers.AdminGetCourseEnrollments)

	studentGroup := app.Group("/admin/student")
	studentGroup.Get("/:userId/course/:courseId/progress", validators.StudentProgress(), middleware.JWTMiddleware, controllers.AdminGetStudentProgress)

	app.Get("/admin/dashboard/stats", middleware.JWTMiddleware, controllers.AdminDashboardStats)
}
