package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

// New returns empty in-memory repositories for every collection.
func New() store.Repositories {
	return store.Repositories{
		Admins:       newAccounts(),
		Assistants:   newAccounts(),
		Doctors:      newDoctors(),
		Patients:     newPatients(),
		Services:     newServices(),
		Appointments: newAppointments(),
		Ratings:      newRatings(),
	}
}

// --- Accounts (admins, assistants) ---

type accounts struct {
	t *table[models.Account, *models.Account]
}

func newAccounts() *accounts {
	return &accounts{t: newTable[models.Account, *models.Account](nil,
		uniqueKey[models.Account]{store.IndexEmail, func(a *models.Account) string { return a.Email }},
	)}
}

func (r *accounts) Create(_ context.Context, a *models.Account) error { return r.t.insert(a) }

func (r *accounts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	return r.t.get(id)
}

func (r *accounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	return r.t.findOne(func(a *models.Account) bool { return a.Email == email })
}

func (r *accounts) List(context.Context) ([]models.Account, error) { return r.t.find(nil), nil }

func (r *accounts) Update(_ context.Context, a *models.Account) error { return r.t.replace(a) }

func (r *accounts) Delete(_ context.Context, id primitive.ObjectID) error { return r.t.remove(id) }

// --- Doctors ---

type doctors struct {
	t *table[models.Doctor, *models.Doctor]
}

func newDoctors() *doctors {
	return &doctors{t: newTable[models.Doctor, *models.Doctor](nil,
		uniqueKey[models.Doctor]{store.IndexEmail, func(d *models.Doctor) string { return d.Email }},
		uniqueKey[models.Doctor]{store.IndexDUI, func(d *models.Doctor) string { return d.DUI }},
	)}
}

func (r *doctors) Create(_ context.Context, d *models.Doctor) error { return r.t.insert(d) }

func (r *doctors) FindByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return r.t.get(id)
}

func (r *doctors) FindByEmail(_ context.Context, email string) (*models.Doctor, error) {
	return r.t.findOne(func(d *models.Doctor) bool { return d.Email == email })
}

// List sorts by last name then name, like the Mongo store.
func (r *doctors) List(context.Context) ([]models.Doctor, error) {
	out := r.t.find(nil)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *doctors) Update(_ context.Context, d *models.Doctor) error { return r.t.replace(d) }

func (r *doctors) Delete(_ context.Context, id primitive.ObjectID) error { return r.t.remove(id) }

// --- Patients ---

type patients struct {
	t *table[models.Patient, *models.Patient]
}

func clonePatient(p models.Patient) models.Patient {
	if p.EmergencyContact != nil {
		contact := *p.EmergencyContact
		p.EmergencyContact = &contact
	}
	return p
}

func newPatients() *patients {
	return &patients{t: newTable[models.Patient, *models.Patient](clonePatient,
		uniqueKey[models.Patient]{store.IndexEmail, func(p *models.Patient) string { return p.Email }},
		uniqueKey[models.Patient]{store.IndexRecordNumber, func(p *models.Patient) string { return p.RecordNumber }},
	)}
}

func (r *patients) Create(_ context.Context, p *models.Patient) error { return r.t.insert(p) }

func (r *patients) FindByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return r.t.get(id)
}

func (r *patients) FindByEmail(_ context.Context, email string) (*models.Patient, error) {
	return r.t.findOne(func(p *models.Patient) bool { return p.Email == email })
}

func (r *patients) ExistsByEmailOrRecordNumber(_ context.Context, email, recordNumber string) (bool, error) {
	_, err := r.t.findOne(func(p *models.Patient) bool {
		return p.Email == email || p.RecordNumber == recordNumber
	})
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// List returns the newest patients first.
func (r *patients) List(context.Context) ([]models.Patient, error) { return r.t.findNewest(nil), nil }

func (r *patients) Update(_ context.Context, p *models.Patient) error { return r.t.replace(p) }

func (r *patients) Delete(_ context.Context, id primitive.ObjectID) error { return r.t.remove(id) }

// --- Services ---

type services struct {
	t *table[models.Service, *models.Service]
}

func cloneService(s models.Service) models.Service {
	s.Procedures = append([]string(nil), s.Procedures...)
	return s
}

func newServices() *services {
	return &services{t: newTable[models.Service, *models.Service](cloneService,
		uniqueKey[models.Service]{store.IndexName, func(s *models.Service) string { return s.Name }},
	)}
}

func (r *services) Create(_ context.Context, s *models.Service) error { return r.t.insert(s) }

func (r *services) FindByID(_ context.Context, id primitive.ObjectID) (*models.Service, error) {
	return r.t.get(id)
}

func (r *services) FindByName(_ context.Context, name string) (*models.Service, error) {
	return r.t.findOne(func(s *models.Service) bool { return s.Name == name })
}

func (r *services) List(context.Context) ([]models.Service, error) {
	out := r.t.find(nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *services) Update(_ context.Context, s *models.Service) error { return r.t.replace(s) }

func (r *services) Delete(_ context.Context, id primitive.ObjectID) error { return r.t.remove(id) }

// --- Appointments ---

type appointments struct {
	t *table[models.Appointment, *models.Appointment]
}

func newAppointments() *appointments {
	return &appointments{t: newTable[models.Appointment, *models.Appointment](nil,
		uniqueKey[models.Appointment]{store.IndexSlot, func(a *models.Appointment) string { return a.SlotKey }},
	)}
}

func (r *appointments) Create(_ context.Context, a *models.Appointment) error {
	a.RefreshSlotKey()
	return r.t.insert(a)
}

func (r *appointments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	return r.t.get(id)
}

func sameDay(a, b time.Time) bool {
	return a.UTC().Format(models.DateLayout) == b.UTC().Format(models.DateLayout)
}

func (r *appointments) List(_ context.Context, f store.AppointmentFilter) ([]models.Appointment, error) {
	out := r.t.find(func(a *models.Appointment) bool {
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			return false
		}
		if f.DoctorID != nil && (a.DoctorID == nil || *a.DoctorID != *f.DoctorID) {
			return false
		}
		if f.Status != "" && a.Status != f.Status {
			return false
		}
		if !f.From.IsZero() && a.AppointmentDate.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && a.AppointmentDate.After(f.To) {
			return false
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.Before(out[j].AppointmentDate)
		}
		return out[i].AppointmentTime < out[j].AppointmentTime
	})
	return out, nil
}

func (r *appointments) FindSlotConflict(_ context.Context, doctorID primitive.ObjectID, date time.Time, clock string, exclude *primitive.ObjectID) (*models.Appointment, error) {
	return r.t.findOne(func(a *models.Appointment) bool {
		if exclude != nil && a.ID == *exclude {
			return false
		}
		return a.DoctorID != nil && *a.DoctorID == doctorID &&
			sameDay(a.AppointmentDate, date) &&
			a.AppointmentTime == clock &&
			a.Status != models.StatusCancelled
	})
}

func (r *appointments) Update(_ context.Context, a *models.Appointment) error {
	a.RefreshSlotKey()
	return r.t.replace(a)
}

func (r *appointments) Delete(_ context.Context, id primitive.ObjectID) error { return r.t.remove(id) }

// --- Ratings ---

type ratings struct {
	t *table[models.Rating, *models.Rating]
}

func newRatings() *ratings {
	return &ratings{t: newTable[models.Rating, *models.Rating](nil,
		uniqueKey[models.Rating]{store.IndexUserRating, func(r *models.Rating) string {
			return r.UserID.Hex() + "|" + r.AppointmentID.Hex()
		}},
	)}
}

func (r *ratings) Create(_ context.Context, rt *models.Rating) error { return r.t.insert(rt) }

func (r *ratings) FindByID(_ context.Context, id primitive.ObjectID) (*models.Rating, error) {
	return r.t.get(id)
}

func (r *ratings) FindByUserAndAppointment(_ context.Context, userID, appointmentID primitive.ObjectID) (*models.Rating, error) {
	return r.t.findOne(func(rt *models.Rating) bool {
		return rt.UserID == userID && rt.AppointmentID == appointmentID
	})
}

func (r *ratings) List(_ context.Context, f store.RatingFilter) ([]models.Rating, error) {
	return r.t.findNewest(func(rt *models.Rating) bool {
		if f.UserID != nil && rt.UserID != *f.UserID {
			return false
		}
		if f.AppointmentID != nil && rt.AppointmentID != *f.AppointmentID {
			return false
		}
		return true
	}), nil
}

func (r *ratings) Update(_ context.Context, rt *models.Rating) error { return r.t.replace(rt) }

func (r *ratings) Delete(_ context.Context, id primitive.ObjectID) error { return r.t.remove(id) }
