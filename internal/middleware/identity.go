package middleware

import "github.com/labstack/echo/v4"

// StaffName returns the signed-in staff name, or "anon" before JWTAuth
// has run.
func StaffName(c echo.Context) string {
	if s, ok := c.Get(CtxStaff).(string); ok && s != "" {
		return s
	}
	return "anon"
}
