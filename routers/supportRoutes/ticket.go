package supportRoutes

import (
	controller "lms/controllers/support"
	"lms/middleware"
	validator "lms/validators/support"

	"github.com/gofiber/fiber/v2"
)

func SetupSupportRoutes(app *fiber.App) {
	support := app.Group("/support")

	support.Post("/create", validator.CreateSupportTicket(), middleware.JWTMiddleware, controller.CreateSupportTicket)
	support.Get("/list", validator.TicketList(), middleware.JWTMiddleware, controller.TicketList)
	support.Get("/admin-list", validator.TicketList(), middleware.JWTMiddleware, controller.AdminTicketList)
	support.Post("/:ticketId/close", validator.TicketID(), middleware.JWTMiddleware, controller.CloseTicket)
}
