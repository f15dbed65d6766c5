package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/clinica-dental-api/internal/config"
	"github.com/harentsoaR/clinica-dental-api/internal/middleware"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/services"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
	"github.com/harentsoaR/clinica-dental-api/internal/store/memstore"
	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

const (
	adminEmail    = "root@clinic.sv"
	adminPassword = "root-pass"
)

type captureMailer struct {
	sent chan services.Message
}

func (m *captureMailer) Send(_ context.Context, msg services.Message) error {
	m.sent <- msg
	return nil
}

type testServer struct {
	router *gin.Engine
	repos  store.Repositories
	hasher *utils.PasswordHasher
	mailer *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	repos := memstore.New()
	hasher, err := utils.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := utils.NewTokenManager("handler-secret", time.Hour, nil)
	require.NoError(t, err)
	mailer := &captureMailer{sent: make(chan services.Message, 4)}
	notifier := services.NewNotificationService(mailer, log)
	t.Cleanup(notifier.Wait)

	auth := services.NewAuthService(config.AdminCredentials{Email: adminEmail, Password: adminPassword}, repos, hasher, tokens, log)
	h := NewHandler(Services{
		Auth:         auth,
		Registration: services.NewRegistrationService(repos.Patients, hasher, tokens, auth, notifier, nil, log),
		Appointments: services.NewAppointmentService(repos, log),
		Ratings:      services.NewRatingService(repos, log),
		Doctors:      services.NewDoctorService(repos.Doctors, hasher, log),
		Patients:     services.NewPatientService(repos.Patients, hasher, log),
		Admins:       services.NewAccountService(repos.Admins, "admin", hasher, log),
		Assistants:   services.NewAccountService(repos.Assistants, "assistant", hasher, log),
		Catalog:      services.NewCatalogService(repos.Services, log),
	}, tokens, false, log)

	return &testServer{
		router: NewRouter(h, []string{"http://localhost:5173"}),
		repos:  repos,
		hasher: hasher,
		mailer: mailer,
	}
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(t, call{method: http.MethodPost, path: "/login", body: gin.H{"email": email, "password": password}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func (s *testServer) addPatient(t *testing.T, email string, verified bool) *models.Patient {
	t.Helper()
	hash, err := s.hasher.Hash("secreto1")
	require.NoError(t, err)
	p := &models.Patient{
		Name: "Ana", Lastname: "López", Email: email, Password: hash,
		RecordNumber: "EXP-" + email, IsVerified: verified, Status: models.PatientActive,
	}
	require.NoError(t, s.repos.Patients.Create(context.Background(), p))
	return p
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginDeliversTokenTwice(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, call{method: http.MethodPost, path: "/login", body: gin.H{"email": adminEmail, "password": adminPassword}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token := body["token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, body["user"].(map[string]any)["role"])

	cookie := cookieNamed(w, middleware.AuthCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	byCookie := s.do(t, call{method: http.MethodGet, path: "/me", cookies: []*http.Cookie{{Name: middleware.AuthCookie, Value: token}}})
	assert.Equal(t, http.StatusOK, byCookie.Code)
	byBearer := s.do(t, call{method: http.MethodGet, path: "/me", token: token})
	assert.Equal(t, http.StatusOK, byBearer.Code)
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.addPatient(t, "pendiente@example.com", false)
	s.addPatient(t, "ana@example.com", true)

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"missing password", gin.H{"email": adminEmail}, http.StatusBadRequest},
		{"wrong password", gin.H{"email": "ana@example.com", "password": "secreto2"}, http.StatusUnauthorized},
		{"admin password mismatch falls through", gin.H{"email": adminEmail, "password": "nope"}, http.StatusNotFound},
		{"unknown user", gin.H{"email": "nadie@example.com", "password": "x"}, http.StatusNotFound},
		{"unverified", gin.H{"email": "pendiente@example.com", "password": "secreto1"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, call{method: http.MethodPost, path: "/login", body: tt.body})
			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.NotEmpty(t, body["message"])
			if tt.name == "unverified" {
				assert.Equal(t, true, body["needsVerification"])
			} else {
				assert.NotContains(t, body, "needsVerification")
			}
		})
	}
}

func TestRegisterAndVerifyPatient(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, call{method: http.MethodPost, path: "/register/patients", body: gin.H{
		"name": "Lucía", "lastname": "Hernández", "email": "lucia@example.com",
		"password": "secreto1", "recordNumber": "EXP-9",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["verificationToken"])
	verification := cookieNamed(w, "verificationToken")
	require.NotNil(t, verification)

	var msg services.Message
	select {
	case msg = <-s.mailer.sent:
	case <-time.After(5 * time.Second):
		t.Fatal("verification email was not sent")
	}
	assert.Equal(t, "lucia@example.com", msg.To)

	stored, err := s.repos.Patients.FindByEmail(context.Background(), "lucia@example.com")
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)

	verifier, err := utils.NewTokenManager("handler-secret", time.Hour, nil)
	require.NoError(t, err)
	vc, err := verifier.ParseVerification(verification.Value)
	require.NoError(t, err)

	bad := s.do(t, call{method: http.MethodPost, path: "/register/patients/verify", body: gin.H{"code": "zzzzzz"}, cookies: []*http.Cookie{verification}})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	ok := s.do(t, call{method: http.MethodPost, path: "/register/patients/verify", body: gin.H{"code": vc.VerificationCode}, cookies: []*http.Cookie{verification}})
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	assert.Equal(t, models.RolePatient, decode(t, ok)["user"].(map[string]any)["role"])
	assert.NotNil(t, cookieNamed(ok, middleware.AuthCookie))
	cleared := cookieNamed(ok, "verificationToken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	stored, err = s.repos.Patients.FindByEmail(context.Background(), "lucia@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)
	ana := s.addPatient(t, "ana@example.com", true)
	other := s.addPatient(t, "otro@example.com", true)
	patientToken := s.login(t, "ana@example.com", "secreto1")
	adminToken := s.login(t, adminEmail, adminPassword)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodGet, path: "/doctors"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/doctors", token: patientToken}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodGet, path: "/patients", token: patientToken}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/patients", token: adminToken}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/patients/" + ana.ID.Hex(), token: patientToken}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodGet, path: "/patients/" + other.ID.Hex(), token: patientToken}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodPost, path: "/services", token: patientToken, body: gin.H{"name": "Limpieza"}}).Code)
	assert.Equal(t, http.StatusCreated, s.do(t, call{method: http.MethodPost, path: "/services", token: adminToken, body: gin.H{"name": "Limpieza"}}).Code)
}

func TestAppointmentAndRatingFlow(t *testing.T) {
	s := newTestServer(t)
	ana := s.addPatient(t, "ana@example.com", true)
	other := s.addPatient(t, "otro@example.com", true)
	patientToken := s.login(t, "ana@example.com", "secreto1")
	adminToken := s.login(t, adminEmail, adminPassword)

	w := s.do(t, call{method: http.MethodPost, path: "/register/doctors", token: adminToken, body: gin.H{
		"name": "Carlos", "lastName": "Méndez", "email": "carlos@clinic.sv", "password": "secreto1",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doctorID := decode(t, w)["doctor"].(map[string]any)["id"].(string)

	forOther := s.do(t, call{method: http.MethodPost, path: "/appointments", token: patientToken, body: gin.H{
		"appointment_date": "2026-06-01", "appointment_time": "10:00", "patient_id": other.ID.Hex(),
	}})
	assert.Equal(t, http.StatusForbidden, forOther.Code)

	created := s.do(t, call{method: http.MethodPost, path: "/appointments", token: patientToken, body: gin.H{
		"appointment_date": "2026-06-01", "appointment_time": "10:00", "doctor_id": doctorID,
	}})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	apt := decode(t, created)["appointment"].(map[string]any)
	aptID := apt["id"].(string)
	assert.Equal(t, ana.ID.Hex(), apt["patient_id"])
	assert.Equal(t, string(models.StatusPending), apt["appointment_status"])

	taken := s.do(t, call{method: http.MethodPost, path: "/appointments", token: adminToken, body: gin.H{
		"appointment_date": "2026-06-01", "appointment_time": "10:00", "doctor_id": doctorID, "patient_id": other.ID.Hex(),
	}})
	assert.Equal(t, http.StatusBadRequest, taken.Code)

	rate := gin.H{"appointment_id": aptID, "rating_score": 5}
	early := s.do(t, call{method: http.MethodPost, path: "/ratings", token: patientToken, body: rate})
	assert.Equal(t, http.StatusBadRequest, early.Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodPatch, path: "/appointments/" + aptID + "/status", token: patientToken, body: gin.H{"appointment_status": "completada"}}).Code)
	done := s.do(t, call{method: http.MethodPatch, path: "/appointments/" + aptID + "/status", token: adminToken, body: gin.H{"appointment_status": "completada"}})
	require.Equal(t, http.StatusOK, done.Code, done.Body.String())

	first := s.do(t, call{method: http.MethodPost, path: "/ratings", token: patientToken, body: rate})
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	again := s.do(t, call{method: http.MethodPost, path: "/ratings", token: patientToken, body: gin.H{"appointment_id": aptID, "rating_score": 3}})
	require.Equal(t, http.StatusOK, again.Code, again.Body.String())

	list := s.do(t, call{method: http.MethodGet, path: "/ratings/appointment/" + aptID, token: patientToken})
	require.Equal(t, http.StatusOK, list.Code)
	var ratings []models.Rating
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &ratings))
	require.Len(t, ratings, 1)
	assert.Equal(t, 3, ratings[0].RatingScore)

	ratingID := ratings[0].ID.Hex()
	otherToken := s.login(t, "otro@example.com", "secreto1")
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/ratings/" + ratingID, token: patientToken}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodGet, path: "/ratings/" + ratingID, token: otherToken}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodGet, path: "/ratings/appointment/" + aptID, token: otherToken}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/ratings/appointment/" + aptID, token: adminToken}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/ratings/" + ratingID, token: adminToken}).Code)

	mine := s.do(t, call{method: http.MethodGet, path: "/appointments/patient/" + ana.ID.Hex(), token: patientToken})
	assert.Equal(t, http.StatusOK, mine.Code)
	theirs := s.do(t, call{method: http.MethodGet, path: "/appointments/patient/" + other.ID.Hex(), token: patientToken})
	assert.Equal(t, http.StatusForbidden, theirs.Code)
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, call{method: http.MethodGet, path: "/services/not-an-id"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid service id", decode(t, w)["message"])
}
