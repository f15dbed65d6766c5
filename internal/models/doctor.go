package models

type Doctor struct {
	Base        `bson:",inline"`
	Name        string `bson:"name" json:"name"`
	LastName    string `bson:"lastName" json:"lastName"`
	Email       string `bson:"email" json:"email"`
	Password    string `bson:"password" json:"-"`
	DUI         string `bson:"dui,omitempty" json:"dui,omitempty"`
	BirthDate   string `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	Specialty   string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
}
