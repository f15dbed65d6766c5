package models

// Service is a treatment offered by the clinic.
type Service struct {
	Base        `bson:",inline"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Procedures  []string `bson:"procedures" json:"procedures"`
}
