package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinica-dental-api/internal/middleware"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
)

// NewRouter wires every route with its role gate.
func NewRouter(h *Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(h.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// --- Public ---
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	register := r.Group("/register/patients")
	{
		register.POST("", h.RegisterPatient)
		register.POST("/verify", h.VerifyPatient)
		register.POST("/resend", h.ResendVerification)
	}
	r.GET("/services", h.GetServices)
	r.GET("/services/:id", h.GetService)

	// --- Any authenticated role ---
	auth := r.Group("", middleware.AuthMiddleware(h.Tokens, h.Log))
	auth.GET("/me", h.Me)
	auth.GET("/doctors", h.GetDoctors)
	auth.GET("/doctors/:id", h.GetDoctor)
	auth.POST("/appointments", h.CreateAppointment)
	auth.GET("/appointments/:id", h.GetAppointment)
	auth.GET("/appointments/patient/:id", h.GetPatientAppointments)
	auth.GET("/patients/:id", h.GetPatient)
	auth.PUT("/patients/:id", h.UpdatePatient)
	auth.GET("/ratings/:id", h.GetRating)
	auth.GET("/ratings/user/:id", h.GetUserRatings)
	auth.GET("/ratings/appointment/:id", h.GetAppointmentRatings)
	auth.PUT("/ratings/:id", h.UpdateRating)
	auth.DELETE("/ratings/:id", h.DeleteRating)

	patient := auth.Group("", middleware.RequireRoles(models.RolePatient))
	patient.POST("/ratings", h.RateAppointment)

	// --- Staff ---
	staff := auth.Group("", middleware.RequireRoles(models.StaffRoles...))
	staff.GET("/patients", h.GetPatients)
	staff.POST("/patients", h.CreatePatient)
	staff.GET("/appointments", h.GetAppointments)
	staff.PUT("/appointments/:id", h.UpdateAppointment)
	staff.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus)
	staff.GET("/appointments/doctor/:id", h.GetDoctorAppointments)
	staff.GET("/ratings", h.GetRatings)

	// --- Administrators ---
	admin := auth.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/register/doctors", h.RegisterDoctor)
	admin.POST("/doctors", h.RegisterDoctor)
	admin.PUT("/doctors/:id", h.UpdateDoctor)
	admin.DELETE("/doctors/:id", h.DeleteDoctor)
	admin.DELETE("/patients/:id", h.DeletePatient)
	admin.DELETE("/appointments/:id", h.DeleteAppointment)
	admin.POST("/services", h.CreateService)
	admin.PUT("/services/:id", h.UpdateService)
	admin.DELETE("/services/:id", h.DeleteService)
	accountRoutes{h: h, svc: h.Admins, subject: "admin"}.register(admin.Group("/admins"))
	accountRoutes{h: h, svc: h.Assistants, subject: "assistant"}.register(admin.Group("/assistants"))

	return r
}
