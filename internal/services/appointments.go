package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

type CreateAppointmentInput struct {
	AppointmentDate         string `json:"appointment_date" validate:"required"`
	AppointmentTime         string `json:"appointment_time" validate:"required"`
	PatientID               string `json:"patient_id" validate:"required"`
	DoctorID                string `json:"doctor_id,omitempty"`
	ServiceID               string `json:"service_id,omitempty"`
	AppointmentConfirmation bool   `json:"appointment_confirmation"`
	ProblemDescription      string `json:"problem_description,omitempty"`
}

// UpdateAppointmentInput is a partial update. Nil fields are left alone; an
// empty doctor_id or service_id removes the assignment.
type UpdateAppointmentInput struct {
	AppointmentDate         *string                   `json:"appointment_date,omitempty"`
	AppointmentTime         *string                   `json:"appointment_time,omitempty"`
	PatientID               *string                   `json:"patient_id,omitempty"`
	DoctorID                *string                   `json:"doctor_id,omitempty"`
	ServiceID               *string                   `json:"service_id,omitempty"`
	AppointmentConfirmation *bool                     `json:"appointment_confirmation,omitempty"`
	ProblemDescription      *string                   `json:"problem_description,omitempty"`
	AppointmentStatus       *models.AppointmentStatus `json:"appointment_status,omitempty"`
}

// AppointmentQuery filters listings. Dates use the appointment_date format.
type AppointmentQuery struct {
	Status string
	From   string
	To     string
}

type AppointmentService struct {
	appointments store.AppointmentRepository
	patients     store.PatientRepository
	doctors      store.DoctorRepository
	services     store.ServiceRepository
	log          logrus.FieldLogger
}

func NewAppointmentService(repos store.Repositories, log logrus.FieldLogger) *AppointmentService {
	return &AppointmentService{
		appointments: repos.Appointments,
		patients:     repos.Patients,
		doctors:      repos.Doctors,
		services:     repos.Services,
		log:          log,
	}
}

// ParseAppointmentDate accepts YYYY-MM-DD or RFC3339 and returns the calendar
// day at UTC midnight.
func ParseAppointmentDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, errs.Validation("invalid appointment_date, use YYYY-MM-DD")
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func (s *AppointmentService) requirePatient(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := ParseID(raw, "patient")
	if err != nil {
		return id, err
	}
	if _, err := s.patients.FindByID(ctx, id); err != nil {
		return id, storeError(err, "patient", "load")
	}
	return id, nil
}

func (s *AppointmentService) requireDoctor(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := ParseID(raw, "doctor")
	if err != nil {
		return id, err
	}
	if _, err := s.doctors.FindByID(ctx, id); err != nil {
		return id, storeError(err, "doctor", "load")
	}
	return id, nil
}

func (s *AppointmentService) requireService(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := ParseID(raw, "service")
	if err != nil {
		return id, err
	}
	if _, err := s.services.FindByID(ctx, id); err != nil {
		return id, storeError(err, "service", "load")
	}
	return id, nil
}

// checkSlot rejects a booking when the doctor already holds a non-cancelled
// appointment at the same date and time.
func (s *AppointmentService) checkSlot(ctx context.Context, doctorID primitive.ObjectID, date time.Time, clock string, exclude *primitive.ObjectID) error {
	_, err := s.appointments.FindSlotConflict(ctx, doctorID, date, clock, exclude)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errs.Internal("failed to check doctor availability", err)
	}
	return errs.Conflict("%s", duplicateMessages[store.IndexSlot])
}

// Create books an appointment. Doctor and service are optional so a patient
// can request a visit before staff assign it.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	date, err := ParseAppointmentDate(in.AppointmentDate)
	if err != nil {
		return nil, err
	}

	patientID, err := s.requirePatient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}

	apt := &models.Appointment{
		AppointmentDate:    date,
		AppointmentTime:    strings.TrimSpace(in.AppointmentTime),
		PatientID:          patientID,
		Confirmation:       in.AppointmentConfirmation,
		ProblemDescription: in.ProblemDescription,
		Status:             models.StatusPending,
	}
	if in.DoctorID != "" {
		doctorID, err := s.requireDoctor(ctx, in.DoctorID)
		if err != nil {
			return nil, err
		}
		apt.DoctorID = &doctorID
	}
	if in.ServiceID != "" {
		serviceID, err := s.requireService(ctx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		apt.ServiceID = &serviceID
	}

	if apt.DoctorID != nil {
		if err := s.checkSlot(ctx, *apt.DoctorID, apt.AppointmentDate, apt.AppointmentTime, nil); err != nil {
			return nil, err
		}
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, storeError(err, "appointment", "create")
	}
	s.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID.Hex(),
		"patient_id":     patientID.Hex(),
	}).Info("Appointment: created")
	return apt, nil
}

func (s *AppointmentService) Get(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	apt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "appointment", "load")
	}
	return apt, nil
}

// Update applies a partial change. When the slot moves and the appointment is
// not cancelled, the conflict check runs against the resulting doctor, date
// and time, ignoring the appointment itself.
func (s *AppointmentService) Update(ctx context.Context, id primitive.ObjectID, in UpdateAppointmentInput) (*models.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	slotChanged := false
	if in.AppointmentDate != nil {
		date, err := ParseAppointmentDate(*in.AppointmentDate)
		if err != nil {
			return nil, err
		}
		apt.AppointmentDate = date
		slotChanged = true
	}
	if in.AppointmentTime != nil {
		clock := strings.TrimSpace(*in.AppointmentTime)
		if clock == "" {
			return nil, errs.Validation("appointment_time cannot be empty")
		}
		apt.AppointmentTime = clock
		slotChanged = true
	}
	if in.PatientID != nil {
		patientID, err := s.requirePatient(ctx, *in.PatientID)
		if err != nil {
			return nil, err
		}
		apt.PatientID = patientID
	}
	if in.DoctorID != nil {
		if *in.DoctorID == "" {
			apt.DoctorID = nil
		} else {
			doctorID, err := s.requireDoctor(ctx, *in.DoctorID)
			if err != nil {
				return nil, err
			}
			apt.DoctorID = &doctorID
		}
		slotChanged = true
	}
	if in.ServiceID != nil {
		if *in.ServiceID == "" {
			apt.ServiceID = nil
		} else {
			serviceID, err := s.requireService(ctx, *in.ServiceID)
			if err != nil {
				return nil, err
			}
			apt.ServiceID = &serviceID
		}
	}
	if in.AppointmentConfirmation != nil {
		apt.Confirmation = *in.AppointmentConfirmation
	}
	if in.ProblemDescription != nil {
		apt.ProblemDescription = *in.ProblemDescription
	}
	if in.AppointmentStatus != nil {
		if !in.AppointmentStatus.Valid() {
			return nil, invalidStatus()
		}
		apt.Status = *in.AppointmentStatus
	}

	if slotChanged && apt.Status.BlocksSlot() && apt.DoctorID != nil {
		if err := s.checkSlot(ctx, *apt.DoctorID, apt.AppointmentDate, apt.AppointmentTime, &apt.ID); err != nil {
			return nil, err
		}
	}

	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, storeError(err, "appointment", "update")
	}
	s.log.WithField("appointment_id", apt.ID.Hex()).Info("Appointment: updated")
	return apt, nil
}

func invalidStatus() error {
	return errs.Validation("appointment_status must be one of [%s %s %s]",
		models.StatusPending, models.StatusCompleted, models.StatusCancelled)
}

// ChangeStatus overwrites the status. Every status is reachable from every
// other; reactivating a cancelled appointment fails if its slot was taken.
func (s *AppointmentService) ChangeStatus(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, invalidStatus()
	}
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apt.Status = status
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, storeError(err, "appointment", "update")
	}
	s.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID.Hex(),
		"status":         status,
	}).Info("Appointment: status changed")
	return apt, nil
}

func (s *AppointmentService) buildFilter(q AppointmentQuery) (store.AppointmentFilter, error) {
	var f store.AppointmentFilter
	if q.Status != "" {
		status := models.AppointmentStatus(q.Status)
		if !status.Valid() {
			return f, invalidStatus()
		}
		f.Status = status
	}
	if q.From != "" {
		from, err := ParseAppointmentDate(q.From)
		if err != nil {
			return f, err
		}
		f.From = from
	}
	if q.To != "" {
		to, err := ParseAppointmentDate(q.To)
		if err != nil {
			return f, err
		}
		f.To = to
	}
	return f, nil
}

func (s *AppointmentService) List(ctx context.Context, q AppointmentQuery) ([]models.Appointment, error) {
	f, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, f)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID primitive.ObjectID, q AppointmentQuery) ([]models.Appointment, error) {
	f, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}
	f.PatientID = &patientID
	return s.list(ctx, f)
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID primitive.ObjectID, q AppointmentQuery) ([]models.Appointment, error) {
	f, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}
	f.DoctorID = &doctorID
	return s.list(ctx, f)
}

func (s *AppointmentService) list(ctx context.Context, f store.AppointmentFilter) ([]models.Appointment, error) {
	out, err := s.appointments.List(ctx, f)
	if err != nil {
		return nil, errs.Internal("failed to retrieve appointments", err)
	}
	return out, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.appointments.Delete(ctx, id); err != nil {
		return storeError(err, "appointment", "delete")
	}
	s.log.WithField("appointment_id", id.Hex()).Info("Appointment: deleted")
	return nil
}
