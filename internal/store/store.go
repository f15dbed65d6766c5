// Package store declares the repositories the services persist through.
// mongostore backs them with MongoDB; memstore keeps everything in process.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Index names reported inside ErrDuplicate so callers can tell which
// uniqueness rule fired.
const (
	IndexEmail        = "email"
	IndexRecordNumber = "recordNumber"
	IndexDUI          = "dui"
	IndexName         = "name"
	IndexSlot         = "slot_key"
	IndexUserRating   = "user_appointment"
)

// DuplicateError names the unique index a write violated.
type DuplicateError struct {
	Index string
}

func (e *DuplicateError) Error() string { return "duplicate key on " + e.Index }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// DuplicateIndex returns the violated index name if err is a duplicate error.
func DuplicateIndex(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Index, true
	}
	return "", false
}

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Update(ctx context.Context, a *models.Account) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	FindByEmail(ctx context.Context, email string) (*models.Doctor, error)
	List(ctx context.Context) ([]models.Doctor, error)
	Update(ctx context.Context, d *models.Doctor) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	FindByEmail(ctx context.Context, email string) (*models.Patient, error)
	// ExistsByEmailOrRecordNumber is the combined duplicate check run before
	// registration.
	ExistsByEmailOrRecordNumber(ctx context.Context, email, recordNumber string) (bool, error)
	List(ctx context.Context) ([]models.Patient, error)
	Update(ctx context.Context, p *models.Patient) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ServiceRepository interface {
	Create(ctx context.Context, s *models.Service) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	FindByName(ctx context.Context, name string) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
	Update(ctx context.Context, s *models.Service) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AppointmentFilter narrows List. Zero fields are ignored; From and To are
// inclusive calendar dates.
type AppointmentFilter struct {
	PatientID *primitive.ObjectID
	DoctorID  *primitive.ObjectID
	Status    models.AppointmentStatus
	From      time.Time
	To        time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// FindSlotConflict returns a non-cancelled appointment of doctorID at
	// date/time other than exclude, or ErrNotFound.
	FindSlotConflict(ctx context.Context, doctorID primitive.ObjectID, date time.Time, clock string, exclude *primitive.ObjectID) (*models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type RatingFilter struct {
	UserID        *primitive.ObjectID
	AppointmentID *primitive.ObjectID
}

type RatingRepository interface {
	Create(ctx context.Context, r *models.Rating) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error)
	FindByUserAndAppointment(ctx context.Context, userID, appointmentID primitive.ObjectID) (*models.Rating, error)
	List(ctx context.Context, filter RatingFilter) ([]models.Rating, error)
	Update(ctx context.Context, r *models.Rating) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Repositories bundles one repository per collection.
type Repositories struct {
	Admins       AccountRepository
	Assistants   AccountRepository
	Doctors      DoctorRepository
	Patients     PatientRepository
	Services     ServiceRepository
	Appointments AppointmentRepository
	Ratings      RatingRepository
}
