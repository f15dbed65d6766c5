package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinica-dental-api/internal/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against every role collection and starts a session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.startSession(c, http.StatusOK, "login successful", session)
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearCookie(c, middleware.AuthCookie)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the profile behind the current session.
func (h *Handler) Me(c *gin.Context) {
	userID, role := middleware.CurrentUser(c)
	profile, err := h.Auth.Profile(c.Request.Context(), userID, role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": userID, "role": role, "profile": profile})
}
