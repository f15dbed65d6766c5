package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/middleware"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/services"
)

// RateAppointment stores the caller's rating. A second rating for the same
// appointment replaces the first and answers 200 instead of 201.
func (h *Handler) RateAppointment(c *gin.Context) {
	var req services.RateAppointmentInput
	if !h.bind(c, &req) {
		return
	}

	userID, _ := middleware.CurrentUser(c)
	if req.UserID == "" {
		req.UserID = userID
	}
	if req.UserID != userID {
		h.fail(c, errs.Forbidden("patients can only rate their own appointments"))
		return
	}

	rating, created, err := h.Ratings.Rate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "rating created", "rating": rating})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating updated", "rating": rating})
}

func (h *Handler) GetRatings(c *gin.Context) {
	out, err := h.Ratings.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetRating(c *gin.Context) {
	id, ok := h.pathID(c, "rating")
	if !ok {
		return
	}
	rating, err := h.Ratings.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.allowSelfOrStaff(c, rating.UserID.Hex()) {
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *Handler) GetUserRatings(c *gin.Context) {
	if !h.allowSelfOrStaff(c, c.Param("id")) {
		return
	}
	id, ok := h.pathID(c, "user")
	if !ok {
		return
	}
	out, err := h.Ratings.ListByUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetAppointmentRatings is open to staff and to the appointment's patient.
func (h *Handler) GetAppointmentRatings(c *gin.Context) {
	id, ok := h.pathID(c, "appointment")
	if !ok {
		return
	}
	if _, role := middleware.CurrentUser(c); !isStaff(role) {
		apt, err := h.Appointments.Get(c.Request.Context(), id)
		if err != nil {
			h.fail(c, err)
			return
		}
		if !h.allowSelfOrStaff(c, apt.PatientID.Hex()) {
			return
		}
	}
	out, err := h.Ratings.ListByAppointment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ownRating loads the rating at :id and checks the caller wrote it or is an
// administrator.
func (h *Handler) ownRating(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := h.pathID(c, "rating")
	if !ok {
		return id, false
	}
	rating, err := h.Ratings.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return id, false
	}
	userID, role := middleware.CurrentUser(c)
	if role != models.RoleAdmin && rating.UserID.Hex() != userID {
		h.fail(c, errs.Forbidden("permission denied"))
		return id, false
	}
	return id, true
}

func (h *Handler) UpdateRating(c *gin.Context) {
	id, ok := h.ownRating(c)
	if !ok {
		return
	}
	var req services.UpdateRatingInput
	if !h.bind(c, &req) {
		return
	}

	rating, err := h.Ratings.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating updated", "rating": rating})
}

func (h *Handler) DeleteRating(c *gin.Context) {
	id, ok := h.ownRating(c)
	if !ok {
		return
	}
	if err := h.Ratings.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating deleted"})
}
