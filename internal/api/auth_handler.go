package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login and logout for both roles.
type AuthHandler struct {
	authService service.AuthService
	sessions    *Sessions
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, sessions *Sessions) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

type AdminLoginRequest struct {
	Username string `form:"usuario" json:"usuario"`
	Password string `form:"password" json:"password"`
}

type MemberLoginRequest struct {
	DNI      string `form:"dni" json:"dni"`
	Password string `form:"password" json:"password"`
}

// LoginPanel lets the visitor pick between the admin and member login.
func (h *AuthHandler) LoginPanel(c *gin.Context) {
	h.sessions.render(c, "login", nil)
}

func (h *AuthHandler) AdminLoginPage(c *gin.Context) {
	h.sessions.render(c, "admin-login", nil)
}

func (h *AuthHandler) MemberLoginPage(c *gin.Context) {
	h.sessions.render(c, "miembro-login", nil)
}

// AdminLogin checks the credentials and stores the administrator in the session.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, "/admin/login", session.FlashError, service.ErrInvalidAdminCredentials.Message)
		return
	}

	admin, err := h.authService.AuthenticateAdmin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.sessions.redirect(c, "/admin/login", session.FlashError, service.Message(err))
		return
	}

	ok := h.sessions.login(c, &session.Principal{Role: domain.RoleAdmin, ID: admin.ID.Hex(), Name: admin.Name})
	if !ok {
		h.sessions.redirect(c, "/admin/login", session.FlashError, service.ErrInternal.Message)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

// MemberLogin authenticates by DNI and stores the member in the session.
func (h *AuthHandler) MemberLogin(c *gin.Context) {
	var req MemberLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, "/miembro/login", session.FlashError, service.ErrInvalidMemberCredentials.Message)
		return
	}

	member, err := h.authService.AuthenticateMember(c.Request.Context(), req.DNI, req.Password)
	if err != nil {
		h.sessions.redirect(c, "/miembro/login", session.FlashError, service.Message(err))
		return
	}

	ok := h.sessions.login(c, &session.Principal{Role: domain.RoleMember, ID: member.ID.Hex(), Name: member.Name})
	if !ok {
		h.sessions.redirect(c, "/miembro/login", session.FlashError, service.ErrInternal.Message)
		return
	}
	c.Redirect(http.StatusSeeOther, "/miembro/dashboard")
}

// Logout invalidates the whole session.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.logout(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) AdminLogout(c *gin.Context) {
	h.sessions.logout(c)
	c.Redirect(http.StatusSeeOther, "/admin/login")
}
