package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

// VerificationTTL bounds both the verification code and the token carrying it.
const VerificationTTL = 2 * time.Hour

// PatientProfile holds the optional demographic fields of a patient.
type PatientProfile struct {
	Birthday         string                   `json:"birthday,omitempty"`
	Address          string                   `json:"address,omitempty"`
	Phone            string                   `json:"phone,omitempty"`
	Weight           float64                  `json:"weight,omitempty" validate:"gte=0"`
	Height           float64                  `json:"height,omitempty" validate:"gte=0"`
	MaritalStatus    models.MaritalStatus     `json:"maritalStatus,omitempty" validate:"omitempty,oneof=soltero casado divorciado viudo"`
	DUI              string                   `json:"dui,omitempty"`
	Gender           models.Gender            `json:"gender,omitempty" validate:"omitempty,oneof=masculino femenino otro"`
	Occupation       string                   `json:"occupation,omitempty"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact,omitempty"`
}

func (p PatientProfile) applyTo(patient *models.Patient) {
	patient.Birthday = p.Birthday
	patient.Address = p.Address
	patient.Phone = p.Phone
	patient.Weight = p.Weight
	patient.Height = p.Height
	patient.MaritalStatus = p.MaritalStatus
	patient.DUI = p.DUI
	patient.Gender = p.Gender
	patient.Occupation = p.Occupation
	patient.EmergencyContact = p.EmergencyContact
}

type RegisterPatientInput struct {
	Name         string `json:"name" validate:"required"`
	Lastname     string `json:"lastname" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	RecordNumber string `json:"recordNumber" validate:"required"`
	PatientProfile
}

// Registration is the outcome of a patient sign-up.
type Registration struct {
	Patient           *models.Patient `json:"patient"`
	VerificationToken string          `json:"verificationToken"`
	ExpiresAt         time.Time       `json:"expiresAt"`
}

// RegistrationService creates unverified patients and verifies them by code.
type RegistrationService struct {
	patients store.PatientRepository
	hasher   *utils.PasswordHasher
	tokens   *utils.TokenManager
	auth     *AuthService
	notifier *NotificationService
	now      Clock
	log      logrus.FieldLogger
}

func NewRegistrationService(patients store.PatientRepository, hasher *utils.PasswordHasher, tokens *utils.TokenManager, auth *AuthService, notifier *NotificationService, now Clock, log logrus.FieldLogger) *RegistrationService {
	if now == nil {
		now = systemClock
	}
	return &RegistrationService{
		patients: patients,
		hasher:   hasher,
		tokens:   tokens,
		auth:     auth,
		notifier: notifier,
		now:      now,
		log:      log,
	}
}

// RegisterPatient stores a new unverified patient and emails a verification
// code. The patient stays stored whatever happens to the email.
func (s *RegistrationService) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Registration, error) {
	in.Email = normalizeEmail(in.Email)
	in.RecordNumber = strings.TrimSpace(in.RecordNumber)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	log := s.log.WithField("email", in.Email)

	exists, err := s.patients.ExistsByEmailOrRecordNumber(ctx, in.Email, in.RecordNumber)
	if err != nil {
		return nil, errs.Internal("failed to check existing patients", err)
	}
	if exists {
		return nil, errs.Conflict("a patient with this email or record number already exists")
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}

	patient := &models.Patient{
		Name:         strings.TrimSpace(in.Name),
		Lastname:     strings.TrimSpace(in.Lastname),
		Email:        in.Email,
		Password:     hashedPassword,
		RecordNumber: in.RecordNumber,
		IsVerified:   false,
		Status:       models.PatientActive,
	}
	in.PatientProfile.applyTo(patient)

	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, storeError(err, "patient", "create")
	}
	log.WithField("patient_id", patient.ID.Hex()).Info("Registration: patient created, pending verification")

	token, expiresAt, err := s.sendCode(patient)
	if err != nil {
		return nil, err
	}
	return &Registration{Patient: patient, VerificationToken: token, ExpiresAt: expiresAt}, nil
}

// sendCode generates a code, binds it into a verification token and emails it.
func (s *RegistrationService) sendCode(patient *models.Patient) (string, time.Time, error) {
	code, err := utils.NewVerificationCode()
	if err != nil {
		return "", time.Time{}, errs.Internal("failed to generate verification code", err)
	}
	expiresAt := s.now().Add(VerificationTTL)

	token, err := s.tokens.IssueVerification(patient.Email, code, expiresAt, VerificationTTL)
	if err != nil {
		return "", time.Time{}, errs.Internal("could not generate verification token", err)
	}

	s.notifier.SendVerificationCode(patient.Email, patient.Name, code, expiresAt)
	return token, expiresAt, nil
}

// VerifyEmail checks code against the one bound in token, marks the patient
// verified and logs them in.
func (s *RegistrationService) VerifyEmail(ctx context.Context, code, token string) (*Session, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, errs.Validation("verification code is required")
	}
	if token == "" {
		return nil, errs.Validation("verification token is required")
	}

	claims, err := s.tokens.ParseVerification(token)
	if errors.Is(err, utils.ErrTokenExpired) {
		return nil, errs.Unauthorized("verification code expired")
	}
	if err != nil {
		return nil, &errs.Error{Kind: errs.KindAuth, Message: "invalid verification token", Err: err}
	}
	log := s.log.WithField("email", claims.Email)

	if s.now().After(time.UnixMilli(claims.CodeExpiresAt)) {
		log.Info("Verify: code expired")
		return nil, errs.Unauthorized("verification code expired")
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(claims.VerificationCode)) != 1 {
		log.Info("Verify: wrong code submitted")
		return nil, errs.Validation("invalid verification code")
	}

	patient, err := s.patients.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, storeError(err, "patient", "load")
	}
	if !patient.IsVerified {
		patient.IsVerified = true
		if err := s.patients.Update(ctx, patient); err != nil {
			return nil, storeError(err, "patient", "update")
		}
	}
	log.Info("Verify: patient verified")

	return s.auth.IssueSession(patient.ID.Hex(), patient.Email, models.RolePatient)
}

// ResendVerification issues a fresh code for a patient who has not verified yet.
func (s *RegistrationService) ResendVerification(ctx context.Context, email string) (*Registration, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errs.Validation("email is required")
	}

	patient, err := s.patients.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "patient", "load")
	}
	if patient.IsVerified {
		return nil, errs.Validation("account is already verified")
	}

	token, expiresAt, err := s.sendCode(patient)
	if err != nil {
		return nil, err
	}
	s.log.WithField("email", email).Info("Registration: verification code resent")
	return &Registration{Patient: patient, VerificationToken: token, ExpiresAt: expiresAt}, nil
}
