// Package router wires handlers, session middleware and role allow-lists
// onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spaps/rental-backend/internal/handler"
	"github.com/spaps/rental-backend/internal/middleware"
	"github.com/spaps/rental-backend/internal/model"
)

// Handlers bundles every handler the route table needs.
type Handlers struct {
	Auth      *handler.Auth
	User      *handler.User
	Client    *handler.Client
	Rentor    *handler.Rentor
	Complex   *handler.Complex
	File      *handler.File
	Health    *handler.Health
	SessionMW echo.MiddlewareFunc
}

// Register lays out the full route table. Public endpoints carry no
// session gate; everything else goes through the session middleware and,
// where the operation is role-bound, a RequireRole allow-list.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", h.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	// Registration, reset and login; no session required.
	users := v1.Group("/users")
	users.POST("/register", h.Auth.Register)
	users.GET("/confirm-registration-code/:code", h.Auth.ConfirmRegistrationCode)
	users.POST("/set-password", h.Auth.SetPassword)
	users.GET("/password-reset-email/:email", h.Auth.PasswordResetEmail)
	users.POST("/password-reset-confirm-code/:code", h.Auth.PasswordResetConfirmCode)
	users.POST("/password-reset", h.Auth.PasswordReset)
	users.POST("/login", h.Auth.Login)
	users.GET("/logout", h.Auth.Logout)

	// Session-gated account endpoints, any role.
	account := v1.Group("/users", h.SessionMW)
	account.GET("/personal-data", h.Auth.PersonalData)
	account.GET("/authorized", h.Auth.Authorized)
	account.GET("/change-email/:email", h.Auth.ChangeEmail)
	account.GET("/confirm-email-change-code/:code", h.Auth.ConfirmEmailChangeCode)
	account.GET("/change-phone/:phone", h.Auth.ChangePhone)
	account.GET("/confirm-phone-change-code/:code", h.Auth.ConfirmPhoneChangeCode)

	admins := middleware.RequireRole(model.RoleSuperadmin, model.RoleAdmin)

	// Administrative account management.
	account.GET("", h.User.List, admins)
	account.GET("/:id", h.User.Get, admins)
	account.PATCH("/:id", h.User.Update, admins)
	account.DELETE("/:id", h.User.Delete, admins)

	// Client profiles.
	clients := v1.Group("/clients", h.SessionMW)
	clients.GET("", h.Client.List, admins)
	clients.GET("/:id", h.Client.Get, admins)
	clients.PATCH("/personal", h.Client.UpdatePersonal, middleware.RequireRole(model.RoleClient))
	clients.POST("/avatar", h.File.UploadAvatar, middleware.RequireRole(model.RoleClient))

	// Rentor profiles.
	rentors := v1.Group("/rentors", h.SessionMW)
	rentors.GET("", h.Rentor.List, admins)
	rentors.GET("/:id", h.Rentor.Get, admins)

	// Complexes: public reads, role-gated mutation.
	v1.GET("/complexes", h.Complex.List)
	v1.GET("/complexes/:id", h.Complex.Get)

	owners := middleware.RequireRole(model.RoleRentor, model.RoleAdmin, model.RoleSuperadmin)
	complexes := v1.Group("/complexes", h.SessionMW)
	complexes.POST("", h.Complex.Create, owners)
	complexes.PATCH("/:id", h.Complex.Update, owners)
	complexes.DELETE("/:id", h.Complex.Delete, owners)
	complexes.POST("/:id/photos", h.File.UploadComplexPhoto, owners)

	// Files: public byte stream, admin delete.
	v1.GET("/files/:category/:id", h.File.Stream)
	files := v1.Group("/files", h.SessionMW)
	files.DELETE("/:category/:id", h.File.Delete, admins)
}
