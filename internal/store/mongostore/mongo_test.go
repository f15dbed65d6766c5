package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

func TestDuplicateIndexName(t *testing.T) {
	msg := `E11000 duplicate key error collection: clinica.patients index: recordNumber dup key: { recordNumber: "EXP-1" }`
	assert.Equal(t, "recordNumber", duplicateIndexName(msg))
	assert.Equal(t, "unknown", duplicateIndexName("something else"))
}

func TestAppointmentFilter(t *testing.T) {
	patient := primitive.NewObjectID()
	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	filter := appointmentFilter(store.AppointmentFilter{PatientID: &patient, Status: models.StatusPending, From: from})

	assert.Equal(t, patient, filter["patient_id"])
	assert.Equal(t, models.StatusPending, filter["appointment_status"])
	assert.Equal(t, bson.M{"$gte": from}, filter["appointment_date"])
	assert.NotContains(t, filter, "doctor_id")
}

func TestSlotConflictFilterExcludesSelfAndCancelled(t *testing.T) {
	doctor := primitive.NewObjectID()
	self := primitive.NewObjectID()
	date := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	filter := slotConflictFilter(doctor, date, "10:00", &self)

	assert.Equal(t, bson.M{"$ne": models.StatusCancelled}, filter["appointment_status"])
	assert.Equal(t, bson.M{"$ne": self}, filter["_id"])
	assert.NotContains(t, slotConflictFilter(doctor, date, "10:00", nil), "_id")
}

func TestPatientRepositoryWithMockServer(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by email decodes document", func(mt *mtest.T) {
		repos := New(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "clinica.patients", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "ana@example.com"},
			{Key: "recordNumber", Value: "EXP-1"},
			{Key: "isVerified", Value: true},
		}))

		p, err := repos.Patients.FindByEmail(context.Background(), "ana@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, p.ID)
		assert.True(mt, p.IsVerified)
	})

	mt.Run("missing document is ErrNotFound", func(mt *mtest.T) {
		repos := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "clinica.patients", mtest.FirstBatch))

		_, err := repos.Patients.FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})

	mt.Run("duplicate key names the index", func(mt *mtest.T) {
		repos := New(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: clinica.patients index: email dup key: { email: \"ana@example.com\" }",
		}))

		err := repos.Patients.Create(context.Background(), &models.Patient{Email: "ana@example.com", RecordNumber: "EXP-2"})
		index, ok := store.DuplicateIndex(err)
		require.True(mt, ok)
		assert.Equal(mt, store.IndexEmail, index)
	})

	mt.Run("replace without match is ErrNotFound", func(mt *mtest.T) {
		repos := New(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repos.Patients.Update(context.Background(), &models.Patient{Base: models.Base{ID: primitive.NewObjectID()}})
		assert.ErrorIs(mt, err, store.ErrNotFound)
	})
}

func TestAppointmentCreateWritesSlotKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("slot key set for booked doctor", func(mt *mtest.T) {
		repos := New(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		doctor := primitive.NewObjectID()

		apt := &models.Appointment{
			PatientID:       primitive.NewObjectID(),
			DoctorID:        &doctor,
			AppointmentDate: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
			AppointmentTime: "14:00",
			Status:          models.StatusPending,
		}
		require.NoError(mt, repos.Appointments.Create(context.Background(), apt))
		assert.Equal(mt, doctor.Hex()+"|2026-08-03|14:00", apt.SlotKey)
		assert.False(mt, apt.ID.IsZero())
	})
}
