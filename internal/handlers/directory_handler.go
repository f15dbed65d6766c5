package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinica-dental-api/internal/middleware"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/services"
)

// --- Doctors ---

func (h *Handler) GetDoctors(c *gin.Context) {
	out, err := h.Doctors.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := h.pathID(c, "doctor")
	if !ok {
		return
	}
	doctor, err := h.Doctors.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := h.pathID(c, "doctor")
	if !ok {
		return
	}
	var req services.UpdateDoctorInput
	if !h.bind(c, &req) {
		return
	}
	doctor, err := h.Doctors.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "doctor updated", "doctor": doctor})
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := h.pathID(c, "doctor")
	if !ok {
		return
	}
	if err := h.Doctors.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "doctor deleted"})
}

// --- Patients ---

func (h *Handler) GetPatients(c *gin.Context) {
	out, err := h.Patients.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req services.CreatePatientInput
	if !h.bind(c, &req) {
		return
	}
	patient, err := h.Patients.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "patient created", "patient": patient})
}

func (h *Handler) GetPatient(c *gin.Context) {
	if !h.allowSelfOrStaff(c, c.Param("id")) {
		return
	}
	id, ok := h.pathID(c, "patient")
	if !ok {
		return
	}
	patient, err := h.Patients.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// UpdatePatient lets staff edit any patient and patients edit their own
// record. Patients cannot change their own status.
func (h *Handler) UpdatePatient(c *gin.Context) {
	if !h.allowSelfOrStaff(c, c.Param("id")) {
		return
	}
	id, ok := h.pathID(c, "patient")
	if !ok {
		return
	}
	var req services.UpdatePatientInput
	if !h.bind(c, &req) {
		return
	}
	if _, role := middleware.CurrentUser(c); role == models.RolePatient {
		req.Status = nil
	}

	patient, err := h.Patients.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "patient updated", "patient": patient})
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := h.pathID(c, "patient")
	if !ok {
		return
	}
	if err := h.Patients.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "patient deleted"})
}

// --- Services offered by the clinic ---

func (h *Handler) GetServices(c *gin.Context) {
	out, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := h.pathID(c, "service")
	if !ok {
		return
	}
	svc, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req services.ServiceInput
	if !h.bind(c, &req) {
		return
	}
	svc, err := h.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "service created", "service": svc})
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := h.pathID(c, "service")
	if !ok {
		return
	}
	var req services.UpdateServiceInput
	if !h.bind(c, &req) {
		return
	}
	svc, err := h.Catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service updated", "service": svc})
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := h.pathID(c, "service")
	if !ok {
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
}
