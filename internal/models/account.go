package models

// Account is the credential-only record stored for admins and assistants.
type Account struct {
	Base     `bson:",inline"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // bcrypt hash, never serialized
}
