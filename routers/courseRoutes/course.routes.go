package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up catalog, authoring, enrollment, and certificate
// routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Public catalog
	courseGroup.Get("/catalog", validators.Catalog(), controllers.GetAllCourses)
	courseGroup.Get("/certificate/verify/:number", controllers.VerifyCertificate)

	// Learner enrollments and certificates
	courseGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetEnrollments)
	courseGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)

	// Authoring
	courseGroup.Post("/create", validators.CreateCourse(), middleware.JWTMiddleware, controllers.CreateCourse)
	courseGroup.Get("/my/list", validators.CourseList(), middleware.JWTMiddleware, controllers.GetMyCourses)
	courseGroup.Put("/:courseId", validators.UpdateCourse(), middleware.JWTMiddleware, controllers.UpdateCourse)
	courseGroup.Delete("/:courseId", validators.CourseID(), middleware.JWTMiddleware, controllers.DeleteCourse)

	courseGroup.Post("/:courseId/thumbnail", validators.CourseID(), middleware.JWTMiddleware, controllers.UploadCourseThumbnail)

	// Sections
	courseGroup.Post("/:courseId/section", validators.Section(false), middleware.JWTMiddleware, controllers.AddSection)
	courseGroup.Put("/:courseId/section/:sectionId", validators.Section(true), middleware.JWTMiddleware, controllers.UpdateSection)
	courseGroup.Delete("/:courseId/section/:sectionId", validators.SectionID(), middleware.JWTMiddleware, controllers.DeleteSection)

	// Lessons
	courseGroup.Post("/:courseId/section/:sectionId/lesson", validators.Lesson(false), middleware.JWTMiddleware, controllers.AddLesson)
	courseGroup.Put("/:courseId/lesson/:lessonId", validators.Lesson(true), middleware.JWTMiddleware, controllers.UpdateLesson)
	courseGroup.Delete("/:courseId/lesson/:lessonId", validators.LessonID(), middleware.JWTMiddleware, controllers.DeleteLesson)

	// Quizzes
	courseGroup.Post("/:courseId/section/:sectionId/quiz", validators.Quiz(), middleware.JWTMiddleware, controllers.AddQuiz)

	// Author lifecycle actions
	courseGroup.Post("/:courseId/submit", validators.CourseID(), middleware.JWTMiddleware, controllers.SubmitCourse)
	courseGroup.Post("/:courseId/reopen", validators.CourseID(), middleware.JWTMiddleware, controllers.ReopenCourse)
	courseGroup.Get("/:courseId/validate", validators.CourseID(), middleware.JWTMiddleware, controllers.ValidateCourse)
	courseGroup.Get("/:courseId/history", validators.CourseID(), middleware.JWTMiddleware, controllers.GetWorkflowHistory)
	courseGroup.Get("/:courseId/versions", validators.CourseID(), middleware.JWTMiddleware, controllers.GetCourseVersions)

	// Enrollment
	courseGroup.Post("/:courseId/enroll", validators.CourseID(), middleware.JWTMiddleware, controllers.EnrollInCourse)
	courseGroup.Delete("/:courseId/enroll", validators.CourseID(), middleware.JWTMiddleware, controllers.DropEnrollment)

	// Reviews
	courseGroup.Post("/:courseId/review", validators.Review(), middleware.JWTMiddleware, controllers.CreateCourseReview)
	courseGroup.Get("/:courseId/reviews", validators.CourseID(), controllers.GetCourseReviews)

	// Course details last so the static routes above win
	courseGroup.Get("/:courseId", validators.CourseID(), controllers.GetCourseDetails)
}
