package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

// --- Doctors ---

type CreateDoctorInput struct {
	Name        string `json:"name" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DUI         string `json:"dui,omitempty"`
	BirthDate   string `json:"birthDate,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type UpdateDoctorInput struct {
	Name        *string `json:"name,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	DUI         *string `json:"dui,omitempty"`
	BirthDate   *string `json:"birthDate,omitempty"`
	Specialty   *string `json:"specialty,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

type DoctorService struct {
	doctors store.DoctorRepository
	hasher  *utils.PasswordHasher
	log     logrus.FieldLogger
}

func NewDoctorService(doctors store.DoctorRepository, hasher *utils.PasswordHasher, log logrus.FieldLogger) *DoctorService {
	return &DoctorService{doctors: doctors, hasher: hasher, log: log}
}

func (s *DoctorService) Create(ctx context.Context, in CreateDoctorInput) (*models.Doctor, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}
	doctor := &models.Doctor{
		Name:        strings.TrimSpace(in.Name),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       in.Email,
		Password:    hashed,
		DUI:         strings.TrimSpace(in.DUI),
		BirthDate:   in.BirthDate,
		Specialty:   in.Specialty,
		PhoneNumber: in.PhoneNumber,
	}
	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, storeError(err, "doctor", "create")
	}
	s.log.WithField("doctor_id", doctor.ID.Hex()).Info("Doctor: registered")
	return doctor, nil
}

func (s *DoctorService) Get(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	d, err := s.doctors.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "doctor", "load")
	}
	return d, nil
}

func (s *DoctorService) List(ctx context.Context) ([]models.Doctor, error) {
	out, err := s.doctors.List(ctx)
	if err != nil {
		return nil, errs.Internal("failed to retrieve doctors", err)
	}
	return out, nil
}

func (s *DoctorService) Update(ctx context.Context, id primitive.ObjectID, in UpdateDoctorInput) (*models.Doctor, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&d.Name, in.Name)
	setString(&d.LastName, in.LastName)
	setString(&d.DUI, in.DUI)
	setString(&d.BirthDate, in.BirthDate)
	setString(&d.Specialty, in.Specialty)
	setString(&d.PhoneNumber, in.PhoneNumber)
	if in.Email != nil {
		d.Email = normalizeEmail(*in.Email)
	}
	if in.Password != nil {
		if d.Password, err = s.hasher.Hash(*in.Password); err != nil {
			return nil, errs.Internal("failed to hash password", err)
		}
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, storeError(err, "doctor", "update")
	}
	return d, nil
}

func (s *DoctorService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return storeError(s.doctors.Delete(ctx, id), "doctor", "delete")
}

// --- Patients ---

// CreatePatientInput is used by staff. Patients they create skip email
// verification unless IsVerified is sent as false.
type CreatePatientInput struct {
	RegisterPatientInput
	IsVerified *bool                `json:"isVerified,omitempty"`
	Status     models.PatientStatus `json:"status,omitempty" validate:"omitempty,oneof=activo inactivo"`
}

type UpdatePatientInput struct {
	Name             *string                  `json:"name,omitempty"`
	Lastname         *string                  `json:"lastname,omitempty"`
	Email            *string                  `json:"email,omitempty" validate:"omitempty,email"`
	Password         *string                  `json:"password,omitempty" validate:"omitempty,min=6"`
	RecordNumber     *string                  `json:"recordNumber,omitempty"`
	Birthday         *string                  `json:"birthday,omitempty"`
	Address          *string                  `json:"address,omitempty"`
	Phone            *string                  `json:"phone,omitempty"`
	Weight           *float64                 `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Height           *float64                 `json:"height,omitempty" validate:"omitempty,gte=0"`
	MaritalStatus    *models.MaritalStatus    `json:"maritalStatus,omitempty" validate:"omitempty,oneof=soltero casado divorciado viudo"`
	DUI              *string                  `json:"dui,omitempty"`
	Gender           *models.Gender           `json:"gender,omitempty" validate:"omitempty,oneof=masculino femenino otro"`
	Occupation       *string                  `json:"occupation,omitempty"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact,omitempty"`
	Status           *models.PatientStatus    `json:"status,omitempty" validate:"omitempty,oneof=activo inactivo"`
}

type PatientService struct {
	patients store.PatientRepository
	hasher   *utils.PasswordHasher
	log      logrus.FieldLogger
}

func NewPatientService(patients store.PatientRepository, hasher *utils.PasswordHasher, log logrus.FieldLogger) *PatientService {
	return &PatientService{patients: patients, hasher: hasher, log: log}
}

func (s *PatientService) Create(ctx context.Context, in CreatePatientInput) (*models.Patient, error) {
	in.Email = normalizeEmail(in.Email)
	in.RecordNumber = strings.TrimSpace(in.RecordNumber)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}
	patient := &models.Patient{
		Name:         strings.TrimSpace(in.Name),
		Lastname:     strings.TrimSpace(in.Lastname),
		Email:        in.Email,
		Password:     hashed,
		RecordNumber: in.RecordNumber,
		IsVerified:   in.IsVerified == nil || *in.IsVerified,
		Status:       in.Status,
	}
	if patient.Status == "" {
		patient.Status = models.PatientActive
	}
	in.PatientProfile.applyTo(patient)

	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, storeError(err, "patient", "create")
	}
	s.log.WithField("patient_id", patient.ID.Hex()).Info("Patient: created by staff")
	return patient, nil
}

func (s *PatientService) Get(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	p, err := s.patients.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "patient", "load")
	}
	return p, nil
}

func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	out, err := s.patients.List(ctx)
	if err != nil {
		return nil, errs.Internal("failed to retrieve patients", err)
	}
	return out, nil
}

func (s *PatientService) Update(ctx context.Context, id primitive.ObjectID, in UpdatePatientInput) (*models.Patient, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&p.Name, in.Name)
	setString(&p.Lastname, in.Lastname)
	setString(&p.Birthday, in.Birthday)
	setString(&p.Address, in.Address)
	setString(&p.Phone, in.Phone)
	setString(&p.DUI, in.DUI)
	setString(&p.Occupation, in.Occupation)
	if in.Email != nil {
		p.Email = normalizeEmail(*in.Email)
	}
	if in.RecordNumber != nil {
		if p.RecordNumber = strings.TrimSpace(*in.RecordNumber); p.RecordNumber == "" {
			return nil, errs.Validation("recordNumber cannot be empty")
		}
	}
	if in.Password != nil {
		if p.Password, err = s.hasher.Hash(*in.Password); err != nil {
			return nil, errs.Internal("failed to hash password", err)
		}
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if in.MaritalStatus != nil {
		p.MaritalStatus = *in.MaritalStatus
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = in.EmergencyContact
	}
	if in.Status != nil {
		p.Status = *in.Status
	}

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, storeError(err, "patient", "update")
	}
	return p, nil
}

func (s *PatientService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return storeError(s.patients.Delete(ctx, id), "patient", "delete")
}

// --- Admins and assistants ---

type AccountInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateAccountInput struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// AccountService manages one credential-only collection. entity names it in
// errors and logs ("admin", "assistant").
type AccountService struct {
	accounts store.AccountRepository
	hasher   *utils.PasswordHasher
	entity   string
	log      logrus.FieldLogger
}

func NewAccountService(accounts store.AccountRepository, entity string, hasher *utils.PasswordHasher, log logrus.FieldLogger) *AccountService {
	return &AccountService{accounts: accounts, hasher: hasher, entity: entity, log: log}
}

func (s *AccountService) Create(ctx context.Context, in AccountInput) (*models.Account, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}
	account := &models.Account{Email: in.Email, Password: hashed}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeError(err, s.entity, "create")
	}
	s.log.WithField("id", account.ID.Hex()).Infof("Account: %s created", s.entity)
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, s.entity, "load")
	}
	return a, nil
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	out, err := s.accounts.List(ctx)
	if err != nil {
		return nil, errs.Internal("failed to retrieve "+s.entity+"s", err)
	}
	return out, nil
}

func (s *AccountService) Update(ctx context.Context, id primitive.ObjectID, in UpdateAccountInput) (*models.Account, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		a.Email = normalizeEmail(*in.Email)
	}
	if in.Password != nil {
		if a.Password, err = s.hasher.Hash(*in.Password); err != nil {
			return nil, errs.Internal("failed to hash password", err)
		}
	}
	if err := s.accounts.Update(ctx, a); err != nil {
		return nil, storeError(err, s.entity, "update")
	}
	return a, nil
}

func (s *AccountService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return storeError(s.accounts.Delete(ctx, id), s.entity, "delete")
}

// --- Services offered by the clinic ---

type ServiceInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Procedures  []string `json:"procedures,omitempty"`
}

type UpdateServiceInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Procedures  *[]string `json:"procedures,omitempty"`
}

type CatalogService struct {
	services store.ServiceRepository
	log      logrus.FieldLogger
}

func NewCatalogService(services store.ServiceRepository, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{services: services, log: log}
}

func cleanProcedures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	svc := &models.Service{
		Name:        in.Name,
		Description: in.Description,
		Procedures:  cleanProcedures(in.Procedures),
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, storeError(err, "service", "create")
	}
	return svc, nil
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "service", "load")
	}
	return svc, nil
}

func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	out, err := s.services.List(ctx)
	if err != nil {
		return nil, errs.Internal("failed to retrieve services", err)
	}
	return out, nil
}

func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in UpdateServiceInput) (*models.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if svc.Name = strings.TrimSpace(*in.Name); svc.Name == "" {
			return nil, errs.Validation("name cannot be empty")
		}
	}
	setString(&svc.Description, in.Description)
	if in.Procedures != nil {
		svc.Procedures = cleanProcedures(*in.Procedures)
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, storeError(err, "service", "update")
	}
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return storeError(s.services.Delete(ctx, id), "service", "delete")
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
