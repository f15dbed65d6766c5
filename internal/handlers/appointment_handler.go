package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/middleware"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/services"
)

// appointmentQuery reads the listing filters, e.g.
// /appointments?status=pendiente&from=2026-07-01&to=2026-07-31
func appointmentQuery(c *gin.Context) services.AppointmentQuery {
	return services.AppointmentQuery{
		Status: c.Query("status"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	}
}

// CreateAppointment books an appointment. Patients can only book for
// themselves; staff book for any patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req services.CreateAppointmentInput
	if !h.bind(c, &req) {
		return
	}

	userID, role := middleware.CurrentUser(c)
	if role == models.RolePatient {
		if req.PatientID == "" {
			req.PatientID = userID
		}
		if req.PatientID != userID {
			h.fail(c, errs.Forbidden("patients can only book their own appointments"))
			return
		}
	}

	apt, err := h.Appointments.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "appointment created", "appointment": apt})
}

func (h *Handler) GetAppointments(c *gin.Context) {
	out, err := h.Appointments.List(c.Request.Context(), appointmentQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := h.pathID(c, "appointment")
	if !ok {
		return
	}
	apt, err := h.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.allowSelfOrStaff(c, apt.PatientID.Hex()) {
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *Handler) GetPatientAppointments(c *gin.Context) {
	if !h.allowSelfOrStaff(c, c.Param("id")) {
		return
	}
	id, ok := h.pathID(c, "patient")
	if !ok {
		return
	}
	out, err := h.Appointments.ListByPatient(c.Request.Context(), id, appointmentQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetDoctorAppointments(c *gin.Context) {
	id, ok := h.pathID(c, "doctor")
	if !ok {
		return
	}
	out, err := h.Appointments.ListByDoctor(c.Request.Context(), id, appointmentQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := h.pathID(c, "appointment")
	if !ok {
		return
	}
	var req services.UpdateAppointmentInput
	if !h.bind(c, &req) {
		return
	}

	apt, err := h.Appointments.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment updated", "appointment": apt})
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := h.pathID(c, "appointment")
	if !ok {
		return
	}
	var req struct {
		Status models.AppointmentStatus `json:"appointment_status"`
	}
	if !h.bind(c, &req) {
		return
	}

	apt, err := h.Appointments.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment status updated", "appointment": apt})
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := h.pathID(c, "appointment")
	if !ok {
		return
	}
	if err := h.Appointments.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}
