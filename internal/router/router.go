package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seating/internal/handler"
	"github.com/iliyamo/theater-seating/internal/middleware"
	"github.com/iliyamo/theater-seating/internal/utils"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers staff login under /v1/auth and /v1/me behind
// JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	e.POST("/v1/auth/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterChart registers the chart endpoints. Reads are public so a
// lobby display can poll them; every mutation needs a staff token and
// passes the rate limiter. Drag release is exempt from the limiter so a
// held drag can always be ended. Resets and imports are admin only.
func RegisterChart(e *echo.Echo, h *handler.ChartHandler, jwtSecret string, limiter echo.MiddlewareFunc, maxUploadBytes int64) {
	if limiter == nil {
		limiter = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	e.GET("/v1/layout", h.Layout)
	e.GET("/v1/chart", h.Chart)

	staff := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleStaff, utils.RoleAdmin),
	)
	staff.POST("/drag/release", h.Release)

	staff.PUT("/mode", h.SetMode, limiter)
	staff.POST("/mode/toggle", h.ToggleMode, limiter)

	staff.POST("/seats/:seat_id/click", h.Click, limiter)
	staff.POST("/seats/:seat_id/press", h.Press, limiter)
	staff.POST("/seats/:seat_id/enter", h.Enter, limiter)

	staff.PUT("/labels/pending", h.SetPending, limiter)
	staff.POST("/labels", h.SubmitLabel, limiter)

	staff.GET("/groups", h.Groups, limiter)
	staff.POST("/groups/clear", h.ClearGroup, limiter)
	staff.POST("/groups/sat", h.ToggleGroupSat, limiter)
	staff.DELETE("/groups/:label", h.ClearLabel, limiter)

	adminOnly := middleware.RequireRole(utils.RoleAdmin)
	staff.DELETE("/labels", h.ClearAll, adminOnly, limiter)
	staff.POST("/imports", h.Import(maxUploadBytes), adminOnly, limiter)
}
