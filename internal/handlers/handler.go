package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/clinica-dental-api/internal/services"
	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

// Services bundles the business services the controllers call into.
type Services struct {
	Auth         *services.AuthService
	Registration *services.RegistrationService
	Appointments *services.AppointmentService
	Ratings      *services.RatingService
	Doctors      *services.DoctorService
	Patients     *services.PatientService
	Admins       *services.AccountService
	Assistants   *services.AccountService
	Catalog      *services.CatalogService
}

// Handler holds everything the HTTP controllers need. Every route is a
// method on it.
type Handler struct {
	Services
	Tokens       *utils.TokenManager
	CookieSecure bool
	Log          logrus.FieldLogger
}

func NewHandler(svc Services, tokens *utils.TokenManager, cookieSecure bool, log logrus.FieldLogger) *Handler {
	return &Handler{
		Services:     svc,
		Tokens:       tokens,
		CookieSecure: cookieSecure,
		Log:          log,
	}
}
