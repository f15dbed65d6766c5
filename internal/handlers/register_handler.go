package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinica-dental-api/internal/services"
)

// RegisterPatient creates an unverified patient and sends the verification
// code by email.
func (h *Handler) RegisterPatient(c *gin.Context) {
	var req services.RegisterPatientInput
	if !h.bind(c, &req) {
		return
	}

	reg, err := h.Registration.RegisterPatient(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setCookie(c, verificationCookie, reg.VerificationToken, services.VerificationTTL)
	c.JSON(http.StatusCreated, gin.H{
		"message":           "patient registered, check your email for the verification code",
		"patient":           reg.Patient,
		"verificationToken": reg.VerificationToken,
	})
}

type verifyRequest struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

// VerifyPatient checks the emailed code and logs the patient in. The token
// comes from the body or, when absent there, from the verification cookie.
func (h *Handler) VerifyPatient(c *gin.Context) {
	var req verifyRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Token == "" {
		req.Token, _ = c.Cookie(verificationCookie)
	}

	session, err := h.Registration.VerifyEmail(c.Request.Context(), req.Code, req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.clearCookie(c, verificationCookie)
	h.startSession(c, http.StatusOK, "email verified", session)
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !h.bind(c, &req) {
		return
	}

	reg, err := h.Registration.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setCookie(c, verificationCookie, reg.VerificationToken, services.VerificationTTL)
	c.JSON(http.StatusOK, gin.H{
		"message":           "verification code sent",
		"verificationToken": reg.VerificationToken,
	})
}

func (h *Handler) RegisterDoctor(c *gin.Context) {
	var req services.CreateDoctorInput
	if !h.bind(c, &req) {
		return
	}

	doctor, err := h.Doctors.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "doctor registered", "doctor": doctor})
}
