package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles carried in session tokens.
const (
	RoleAdmin     = "administrador"
	RoleDoctor    = "doctor"
	RoleAssistant = "asistente"
	RolePatient   = "paciente"
)

// StaffRoles may manage patients and appointments.
var StaffRoles = []string{RoleAdmin, RoleDoctor, RoleAssistant}

// Base holds the identity and timestamps every document carries.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (b *Base) GetID() primitive.ObjectID { return b.ID }

// Stamp assigns an id on first save and refreshes the timestamps.
func (b *Base) Stamp(now time.Time) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Optional distinguishes a JSON key that was absent from one sent as null or
// empty. Set is true whenever the key was present.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}
