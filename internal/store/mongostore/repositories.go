package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

type accounts struct{ c collection[models.Account] }

func (r *accounts) Create(ctx context.Context, a *models.Account) error {
	a.Stamp(now())
	return r.c.insert(ctx, a)
}

func (r *accounts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *accounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.c.findOne(ctx, bson.M{"email": email})
}

func (r *accounts) List(ctx context.Context) ([]models.Account, error) {
	return r.c.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *accounts) Update(ctx context.Context, a *models.Account) error {
	a.Stamp(now())
	return r.c.replace(ctx, a.ID, a)
}

func (r *accounts) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

type doctors struct{ c collection[models.Doctor] }

func (r *doctors) Create(ctx context.Context, d *models.Doctor) error {
	d.Stamp(now())
	return r.c.insert(ctx, d)
}

func (r *doctors) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *doctors) FindByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	return r.c.findOne(ctx, bson.M{"email": email})
}

func (r *doctors) List(ctx context.Context) ([]models.Doctor, error) {
	return r.c.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "name", Value: 1}}))
}

func (r *doctors) Update(ctx context.Context, d *models.Doctor) error {
	d.Stamp(now())
	return r.c.replace(ctx, d.ID, d)
}

func (r *doctors) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

type patients struct{ c collection[models.Patient] }

func (r *patients) Create(ctx context.Context, p *models.Patient) error {
	p.Stamp(now())
	return r.c.insert(ctx, p)
}

func (r *patients) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *patients) FindByEmail(ctx context.Context, email string) (*models.Patient, error) {
	return r.c.findOne(ctx, bson.M{"email": email})
}

func (r *patients) ExistsByEmailOrRecordNumber(ctx context.Context, email, recordNumber string) (bool, error) {
	return r.c.exists(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"recordNumber": recordNumber},
	}})
}

func (r *patients) List(ctx context.Context) ([]models.Patient, error) {
	return r.c.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *patients) Update(ctx context.Context, p *models.Patient) error {
	p.Stamp(now())
	return r.c.replace(ctx, p.ID, p)
}

func (r *patients) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

type services struct{ c collection[models.Service] }

func (r *services) Create(ctx context.Context, s *models.Service) error {
	s.Stamp(now())
	return r.c.insert(ctx, s)
}

func (r *services) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *services) FindByName(ctx context.Context, name string) (*models.Service, error) {
	return r.c.findOne(ctx, bson.M{"name": name})
}

func (r *services) List(ctx context.Context) ([]models.Service, error) {
	return r.c.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *services) Update(ctx context.Context, s *models.Service) error {
	s.Stamp(now())
	return r.c.replace(ctx, s.ID, s)
}

func (r *services) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

type appointments struct{ c collection[models.Appointment] }

func (r *appointments) Create(ctx context.Context, a *models.Appointment) error {
	a.Stamp(now())
	a.RefreshSlotKey()
	return r.c.insert(ctx, a)
}

func (r *appointments) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *appointments) List(ctx context.Context, f store.AppointmentFilter) ([]models.Appointment, error) {
	sort := bson.D{{Key: "appointment_date", Value: 1}, {Key: "appointment_time", Value: 1}}
	return r.c.find(ctx, appointmentFilter(f), options.Find().SetSort(sort))
}

func (r *appointments) FindSlotConflict(ctx context.Context, doctorID primitive.ObjectID, date time.Time, clock string, exclude *primitive.ObjectID) (*models.Appointment, error) {
	return r.c.findOne(ctx, slotConflictFilter(doctorID, date, clock, exclude))
}

func (r *appointments) Update(ctx context.Context, a *models.Appointment) error {
	a.Stamp(now())
	a.RefreshSlotKey()
	return r.c.replace(ctx, a.ID, a)
}

func (r *appointments) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}

func appointmentFilter(f store.AppointmentFilter) bson.M {
	filter := bson.M{}
	if f.PatientID != nil {
		filter["patient_id"] = *f.PatientID
	}
	if f.DoctorID != nil {
		filter["doctor_id"] = *f.DoctorID
	}
	if f.Status != "" {
		filter["appointment_status"] = f.Status
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		dateRange := bson.M{}
		if !f.From.IsZero() {
			dateRange["$gte"] = f.From
		}
		if !f.To.IsZero() {
			dateRange["$lte"] = f.To
		}
		filter["appointment_date"] = dateRange
	}
	return filter
}

func slotConflictFilter(doctorID primitive.ObjectID, date time.Time, clock string, exclude *primitive.ObjectID) bson.M {
	filter := bson.M{
		"doctor_id":          doctorID,
		"appointment_date":   date,
		"appointment_time":   clock,
		"appointment_status": bson.M{"$ne": models.StatusCancelled},
	}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}
	return filter
}

type ratings struct{ c collection[models.Rating] }

func (r *ratings) Create(ctx context.Context, rt *models.Rating) error {
	rt.Stamp(now())
	return r.c.insert(ctx, rt)
}

func (r *ratings) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *ratings) FindByUserAndAppointment(ctx context.Context, userID, appointmentID primitive.ObjectID) (*models.Rating, error) {
	return r.c.findOne(ctx, bson.M{"user_id": userID, "appointment_id": appointmentID})
}

func (r *ratings) List(ctx context.Context, f store.RatingFilter) ([]models.Rating, error) {
	filter := bson.M{}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if f.AppointmentID != nil {
		filter["appointment_id"] = *f.AppointmentID
	}
	return r.c.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *ratings) Update(ctx context.Context, rt *models.Rating) error {
	rt.Stamp(now())
	return r.c.replace(ctx, rt.ID, rt)
}

func (r *ratings) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.delete(ctx, id)
}
