package handlers

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/middleware"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/services"
)

const verificationCookie = "verificationToken"

var statusByKind = map[errs.Kind]int{
	errs.KindValidation: http.StatusBadRequest,
	errs.KindConflict:   http.StatusBadRequest,
	errs.KindNotFound:   http.StatusNotFound,
	errs.KindAuth:       http.StatusUnauthorized,
	errs.KindPermission: http.StatusForbidden,
	errs.KindInternal:   http.StatusInternalServerError,
}

// fail converts a service error into the JSON error body. Anything that is
// not an *errs.Error is reported as an internal error.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusByKind[errs.KindOf(err)]
	var appErr *errs.Error
	if !errors.As(err, &appErr) {
		appErr = errs.Internal("internal server error", err)
	}

	body := gin.H{"message": appErr.Message}
	if appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	}
	if appErr.NeedsVerification {
		body["needsVerification"] = true
	}
	if status >= http.StatusInternalServerError {
		h.Log.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error(c.FullPath() + ": " + appErr.Message)
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

// bind decodes the JSON body into req, answering 400 itself on failure.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return false
	}
	return true
}

// pathID parses the :id route parameter.
func (h *Handler) pathID(c *gin.Context, what string) (primitive.ObjectID, bool) {
	id, err := services.ParseID(c.Param("id"), what)
	if err != nil {
		h.fail(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func isStaff(role string) bool {
	return slices.Contains(models.StaffRoles, role)
}

// allowSelfOrStaff passes staff, or a patient acting on their own id.
func (h *Handler) allowSelfOrStaff(c *gin.Context, ownerID string) bool {
	userID, role := middleware.CurrentUser(c)
	if isStaff(role) || (role == models.RolePatient && userID == ownerID) {
		return true
	}
	h.fail(c, errs.Forbidden("permission denied"))
	return false
}

func (h *Handler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", h.CookieSecure, true)
}

func (h *Handler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", h.CookieSecure, true)
}

// startSession delivers a session token both as the auth cookie and in the
// response body.
func (h *Handler) startSession(c *gin.Context, status int, message string, session *services.Session) {
	h.setCookie(c, middleware.AuthCookie, session.Token, h.Tokens.SessionTTL())
	c.JSON(status, gin.H{"message": message, "token": session.Token, "user": session.User})
}
