package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seating/internal/config"
	"github.com/iliyamo/theater-seating/internal/middleware"
	"github.com/iliyamo/theater-seating/internal/utils"
)

// AuthHandler signs staff in with a shared passcode.
type AuthHandler struct {
	Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

// ----- DTOs -----

type loginReq struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	Name   string    `json:"name"`
	Role   string    `json:"role"`
	Access tokenPart `json:"access"`
}

// Login handles POST /v1/auth/login. The admin passcode grants ADMIN; the
// staff passcode grants STAFF, or ADMIN when no admin passcode is set.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Passcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passcode required"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "staff"
	}

	var role string
	switch {
	case utils.VerifyPasscode(h.Cfg.AdminPasscodeHash, req.Passcode):
		role = utils.RoleAdmin
	case utils.VerifyPasscode(h.Cfg.StaffPasscodeHash, req.Passcode):
		role = utils.RoleStaff
		if h.Cfg.AdminPasscodeHash == "" {
			role = utils.RoleAdmin
		}
	default:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid passcode"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, name, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Name:   name,
		Role:   role,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"name": middleware.StaffName(c),
		"role": c.Get(middleware.CtxRole),
	})
}
