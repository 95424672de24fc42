package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/http/handlers"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Auth             *handlers.AuthHandler
	Scope            *handlers.ScopeHandler
	Roles            *handlers.RolesHandler
	Directory        *handlers.DirectoryHandler
	Tickets          *handlers.TicketsHandler
	Attendance       *handlers.AttendanceHandler
	ResourceRequests *handlers.ResourceRequestsHandler
	Notifications    *handlers.NotificationsHandler
	AuthMiddleware   *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/organizations/register", cfg.Auth.RegisterOrganization)
	authGroup.Post("/organizations/login", cfg.Auth.LoginOrganization)
	authGroup.Post("/users/register", cfg.Auth.RegisterUser)
	authGroup.Post("/users/login", cfg.Auth.LoginUser)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle)
	session.Post("/password/change", cfg.Auth.ChangePassword)
	session.Post("/switch-department", cfg.Scope.SwitchDepartment)
	session.Post("/switch-project", cfg.Scope.SwitchProject)
	session.Get("/default-project", cfg.Scope.DefaultProject)

	roles := app.Group("/roles", cfg.AuthMiddleware.Handle)
	roles.Post("/assign", cfg.Roles.AssignRole)
	roles.Post("/revoke", cfg.Roles.RevokeRole)

	departments := app.Group("/departments", cfg.AuthMiddleware.Handle)
	departments.Get("/", cfg.Directory.ListDepartments)
	departments.Post("/", auth.RequireOrganizationRole(domain.RoleAdmin), cfg.Directory.CreateDepartment)
	departments.Patch("/:id", auth.RequireOrganizationRole(domain.RoleAdmin), cfg.Directory.UpdateDepartment)

	projects := app.Group("/projects", cfg.AuthMiddleware.Handle)
	projects.Get("/", cfg.Directory.ListProjects)
	projects.Post("/", auth.RequireOrganizationRole(domain.RoleAdmin), cfg.Directory.CreateProject)
	projects.Patch("/:id", auth.RequireOrganizationRole(domain.RoleAdmin), cfg.Directory.UpdateProject)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.RequireOrganizationRole(domain.RoleManager), cfg.Directory.ListUsers)
	users.Get("/:id/memberships", cfg.Directory.ListMemberships)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/assign", cfg.Tickets.AssignTicket)

	attendance := app.Group("/attendance", cfg.AuthMiddleware.Handle, auth.RequireUserPrincipal())
	attendance.Post("/check-in", cfg.Attendance.CheckIn)
	attendance.Post("/check-out", cfg.Attendance.CheckOut)
	attendance.Get("/", cfg.Attendance.ListRecords)

	requests := app.Group("/resource-requests", cfg.AuthMiddleware.Handle)
	requests.Post("/", cfg.ResourceRequests.CreateRequest)
	requests.Get("/", cfg.ResourceRequests.ListRequests)
	requests.Post("/:id/decide", cfg.ResourceRequests.DecideRequest)

	notifications := app.Group("/notifications")
	// EventSource cannot set an Authorization header; the stream
	// authenticates via the token query parameter instead.
	notifications.Get("/stream", cfg.AuthMiddleware.HandleQueryToken, cfg.Notifications.Stream)
	notifications.Get("/", cfg.AuthMiddleware.Handle, cfg.Notifications.ListNotifications)
	notifications.Post("/:id/read", cfg.AuthMiddleware.Handle, cfg.Notifications.MarkRead)
}
