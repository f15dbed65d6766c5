package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	MinRatingScore   = 1
	MaxRatingScore   = 5
	MaxCommentLength = 500
)

type Rating struct {
	Base          `bson:",inline"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	AppointmentID primitive.ObjectID `bson:"appointment_id" json:"appointment_id"`
	RatingScore   int                `bson:"rating_score" json:"rating_score"`
	Comment       string             `bson:"comment,omitempty" json:"comment,omitempty"`
}
