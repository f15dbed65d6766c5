package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/clinica-dental-api/internal/config"
	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
	"github.com/harentsoaR/clinica-dental-api/internal/store/memstore"
	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

const testPassword = "correct-horse"

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

type fixture struct {
	now      time.Time
	repos    store.Repositories
	hasher   *utils.PasswordHasher
	tokens   *utils.TokenManager
	mailer   *recordingMailer
	notifier *NotificationService

	auth         *AuthService
	registration *RegistrationService
	appointments *AppointmentService
	ratings      *RatingService
	patients     *PatientService
	doctors      *DoctorService
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:    time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC),
		repos:  memstore.New(),
		mailer: &recordingMailer{},
	}
	clock := func() time.Time { return f.now }
	log := quietLogger()

	var err error
	f.hasher, err = utils.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	f.tokens, err = utils.NewTokenManager("test-secret", 24*time.Hour, clock)
	require.NoError(t, err)

	f.notifier = NewNotificationService(f.mailer, log)
	admin := config.AdminCredentials{Email: "root@clinic.sv", Password: "root-pass"}
	f.auth = NewAuthService(admin, f.repos, f.hasher, f.tokens, log)
	f.registration = NewRegistrationService(f.repos.Patients, f.hasher, f.tokens, f.auth, f.notifier, clock, log)
	f.appointments = NewAppointmentService(f.repos, log)
	f.ratings = NewRatingService(f.repos, log)
	f.patients = NewPatientService(f.repos.Patients, f.hasher, log)
	f.doctors = NewDoctorService(f.repos.Doctors, f.hasher, log)
	return f
}

func (f *fixture) hash(t *testing.T, password string) string {
	t.Helper()
	h, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return h
}

func (f *fixture) addPatient(t *testing.T, email string, verified bool) *models.Patient {
	t.Helper()
	p := &models.Patient{
		Name:         "Ana",
		Lastname:     "López",
		Email:        email,
		Password:     f.hash(t, testPassword),
		RecordNumber: "EXP-" + primitive.NewObjectID().Hex(),
		IsVerified:   verified,
		Status:       models.PatientActive,
	}
	require.NoError(t, f.repos.Patients.Create(context.Background(), p))
	return p
}

func (f *fixture) addDoctor(t *testing.T, email string) *models.Doctor {
	t.Helper()
	d := &models.Doctor{Name: "Carlos", LastName: "Méndez", Email: email, Password: f.hash(t, testPassword)}
	require.NoError(t, f.repos.Doctors.Create(context.Background(), d))
	return d
}

func (f *fixture) addAccount(t *testing.T, repo store.AccountRepository, email string) *models.Account {
	t.Helper()
	a := &models.Account{Email: email, Password: f.hash(t, testPassword)}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func requireKind(t *testing.T, err error, kind errs.Kind) *errs.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *errs.Error
	require.True(t, errors.As(err, &appErr), "expected *errs.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, "message: %s", appErr.Message)
	return appErr
}
