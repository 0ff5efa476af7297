package main

import (
	"log"

	"lms/config"
	courseControllers "lms/controllers/course"
	learningControllers "lms/controllers/learning"
	"lms/database"
	"lms/progress"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	learningRoutes "lms/routers/learningRoutes"
	superAdminRoutes "lms/routers/superAdmin"
	supportRoutes "lms/routers/supportRoutes"
	userProfileRoutes "lms/routers/userRoutes"
	"lms/utils"
	"lms/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db
	notifier := utils.NewEventNotifier()

	// Course lifecycle engine
	lifecycle := workflow.NewService(db, notifier)

	// Progress tracking engine
	structure := progress.NewCourseStructure(db)
	enrollments := progress.NewEnrollments(db)
	certificates := progress.NewCertificates(db)
	consistency := progress.NewConsistency(db, structure, enrollments, certificates, notifier)
	store := progress.NewStore(db, structure, consistency)

	courseControllers.Setup(lifecycle)
	learningControllers.Setup(store, consistency)

	// Nightly consistency sweep
	sweeper := utils.InitializeSweepScheduler(consistency)
	defer sweeper.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve static files from the public folder
	app.Static("/", "./public")

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	learningRoutes.SetupLearningRoutes(app)
	supportRoutes.SetupSupportRoutes(app)
	superAdminRoutes.SetupSuperAdminRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
