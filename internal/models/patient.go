package models

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "soltero"
	MaritalMarried  MaritalStatus = "casado"
	MaritalDivorced MaritalStatus = "divorciado"
	MaritalWidowed  MaritalStatus = "viudo"
)

type Gender string

const (
	GenderMale   Gender = "masculino"
	GenderFemale Gender = "femenino"
	GenderOther  Gender = "otro"
)

type PatientStatus string

const (
	PatientActive   PatientStatus = "activo"
	PatientInactive PatientStatus = "inactivo"
)

type EmergencyContact struct {
	FirstName          string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName           string `bson:"lastName,omitempty" json:"lastName,omitempty"`
	PhoneNumber        string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Occupation         string `bson:"occupation,omitempty" json:"occupation,omitempty"`
	FamilyRelationship string `bson:"familyRelationship,omitempty" json:"familyRelationship,omitempty"`
}

type Patient struct {
	Base         `bson:",inline"`
	Name         string `bson:"name" json:"name"`
	Lastname     string `bson:"lastname" json:"lastname"`
	Email        string `bson:"email" json:"email"`
	Password     string `bson:"password" json:"-"`
	RecordNumber string `bson:"recordNumber" json:"recordNumber"`
	IsVerified   bool   `bson:"isVerified" json:"isVerified"`

	Birthday         string            `bson:"birthday,omitempty" json:"birthday,omitempty"`
	Address          string            `bson:"address,omitempty" json:"address,omitempty"`
	Phone            string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Weight           float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Height           float64           `bson:"height,omitempty" json:"height,omitempty"`
	MaritalStatus    MaritalStatus     `bson:"maritalStatus,omitempty" json:"maritalStatus,omitempty"`
	DUI              string            `bson:"dui,omitempty" json:"dui,omitempty"`
	Gender           Gender            `bson:"gender,omitempty" json:"gender,omitempty"`
	Occupation       string            `bson:"occupation,omitempty" json:"occupation,omitempty"`
	EmergencyContact *EmergencyContact `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	Status           PatientStatus     `bson:"status" json:"status"`
}
