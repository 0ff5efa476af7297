package superAdminRoutes

import (
	superAdminController "lms/controllers/superAdmin"
	"lms/middleware"
	superAdminValidator "lms/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin")

	adminGroup.Get("/user/list", superAdminValidator.List(), middleware.JWTMiddleware, superAdminController.UserList)
	adminGroup.Post("/register-author", superAdminValidator.RegisterAuthor(), middleware.JWTMiddleware, superAdminController.RegisterAuthor)
	adminGroup.Patch("/user/role", superAdminValidator.RoleUpdate(), middleware.JWTMiddleware, superAdminController.UpdateUserRole)
	adminGroup.Patch("/user/block", superAdminValidator.BlockUpdate(), middleware.JWTMiddleware, superAdminController.BlockUser)
	adminGroup.Get("/permission", superAdminValidator.PermissionByUserID(), middleware.JWTMiddleware, superAdminController.PermissionsByUserID)
}
