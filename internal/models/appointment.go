package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pendiente"
	StatusCompleted AppointmentStatus = "completada"
	StatusCancelled AppointmentStatus = "cancelada"

	// StatusFinalizedLegacy is not a valid status for new writes. Older
	// documents may still carry it and it counts as finished for ratings.
	StatusFinalizedLegacy AppointmentStatus = "finalizada"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// BlocksSlot reports whether an appointment in this status occupies its
// doctor's date/time slot.
func (s AppointmentStatus) BlocksSlot() bool {
	return s != StatusCancelled
}

// Ratable reports whether a patient may rate an appointment in this status.
func (s AppointmentStatus) Ratable() bool {
	return s == StatusCompleted || s == StatusFinalizedLegacy
}

// DateLayout is the calendar format used for appointment_date on the wire.
const DateLayout = "2006-01-02"

type Appointment struct {
	Base               `bson:",inline"`
	AppointmentDate    time.Time           `bson:"appointment_date" json:"appointment_date"`
	AppointmentTime    string              `bson:"appointment_time" json:"appointment_time"`
	PatientID          primitive.ObjectID  `bson:"patient_id" json:"patient_id"`
	DoctorID           *primitive.ObjectID `bson:"doctor_id,omitempty" json:"doctor_id,omitempty"`
	ServiceID          *primitive.ObjectID `bson:"service_id,omitempty" json:"service_id,omitempty"`
	Confirmation       bool                `bson:"appointment_confirmation" json:"appointment_confirmation"`
	ProblemDescription string              `bson:"problem_description,omitempty" json:"problem_description,omitempty"`
	Status             AppointmentStatus   `bson:"appointment_status" json:"appointment_status"`

	// SlotKey is present only while the appointment holds a doctor slot. A
	// unique index on it rejects double bookings at write time.
	SlotKey string `bson:"slot_key,omitempty" json:"-"`
}

// SlotKeyFor builds the key identifying a doctor's date/time slot.
func SlotKeyFor(doctorID primitive.ObjectID, date time.Time, clock string) string {
	return doctorID.Hex() + "|" + date.UTC().Format(DateLayout) + "|" + clock
}

// RefreshSlotKey recomputes SlotKey from the current doctor, date, time and
// status. Stores call it before every write.
func (a *Appointment) RefreshSlotKey() {
	if a.DoctorID == nil || !a.Status.BlocksSlot() {
		a.SlotKey = ""
		return
	}
	a.SlotKey = SlotKeyFor(*a.DoctorID, a.AppointmentDate, a.AppointmentTime)
}
