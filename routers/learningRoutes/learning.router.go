package learningRoutes

import (
	controllers "lms/controllers/learning"
	"lms/middleware"
	validators "lms/validators/learning"

	"github.com/gofiber/fiber/v2"
)

// SetupLearningRoutes sets up progress tracking routes for enrolled learners
func SetupLearningRoutes(app *fiber.App) {
	learningGroup := app.Group("/learning")

	learningGroup.Get("/:courseId/progress", validators.CourseID(), middleware.JWTMiddleware, controllers.GetProgress)

	learningGroup.Post("/:courseId/lesson/:lessonId/complete", validators.LessonComplete(), middleware.JWTMiddleware, controllers.CompleteLesson)
	learningGroup.Patch("/:courseId/lesson/:lessonId/progress", validators.LessonProgress(), middleware.JWTMiddleware, controllers.UpdateLessonProgress)
	learningGroup.Post("/:courseId/lesson/:lessonId/video", validators.VideoTelemetry(), middleware.JWTMiddleware, controllers.UpdateVideoProgress)

	learningGroup.Post("/:courseId/quiz/:quizId/attempt", validators.QuizAttempt(), middleware.JWTMiddleware, controllers.SubmitQuizAttempt)
	learningGroup.Post("/:courseId/section/:sectionId/complete", validators.SectionComplete(), middleware.JWTMiddleware, controllers.CompleteSection)

	learningGroup.Post("/:courseId/sync", validators.Snapshot(), middleware.JWTMiddleware, controllers.SyncProgress)
	learningGroup.Post("/:courseId/consistency/check", validators.CourseID(), middleware.JWTMiddleware, controllers.CheckConsistency)
}
