package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

type RateAppointmentInput struct {
	UserID        string `json:"user_id" validate:"required"`
	AppointmentID string `json:"appointment_id" validate:"required"`
	RatingScore   *int   `json:"rating_score" validate:"required"`
	Comment       string `json:"comment,omitempty" validate:"max=500"`
}

// UpdateRatingInput distinguishes an absent comment from one sent as null or
// "", which clears it.
type UpdateRatingInput struct {
	RatingScore models.Optional[int]    `json:"rating_score"`
	Comment     models.Optional[string] `json:"comment"`
}

type RatingService struct {
	ratings      store.RatingRepository
	appointments store.AppointmentRepository
	patients     store.PatientRepository
	log          logrus.FieldLogger
}

func NewRatingService(repos store.Repositories, log logrus.FieldLogger) *RatingService {
	return &RatingService{
		ratings:      repos.Ratings,
		appointments: repos.Appointments,
		patients:     repos.Patients,
		log:          log,
	}
}

func checkScore(score int) error {
	if score < models.MinRatingScore || score > models.MaxRatingScore {
		return errs.Validation("rating_score must be an integer between %d and %d", models.MinRatingScore, models.MaxRatingScore)
	}
	return nil
}

func checkComment(comment string) error {
	if utf8.RuneCountInString(comment) > models.MaxCommentLength {
		return errs.Validation("comment must be at most %d characters", models.MaxCommentLength)
	}
	return nil
}

// Rate records a patient's score for a finished appointment. Rating the same
// appointment again overwrites the earlier score and comment; created reports
// whether a new rating was stored.
func (s *RatingService) Rate(ctx context.Context, in RateAppointmentInput) (rating *models.Rating, created bool, err error) {
	if err := validateInput(in); err != nil {
		return nil, false, err
	}
	if err := checkScore(*in.RatingScore); err != nil {
		return nil, false, err
	}

	userID, err := ParseID(in.UserID, "user")
	if err != nil {
		return nil, false, err
	}
	appointmentID, err := ParseID(in.AppointmentID, "appointment")
	if err != nil {
		return nil, false, err
	}

	if _, err := s.patients.FindByID(ctx, userID); err != nil {
		return nil, false, storeError(err, "patient", "load")
	}
	apt, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, false, storeError(err, "appointment", "load")
	}
	if apt.PatientID != userID {
		return nil, false, errs.Forbidden("the appointment does not belong to this patient")
	}
	if !apt.Status.Ratable() {
		return nil, false, errs.Validation("only completed appointments can be rated")
	}

	log := s.log.WithFields(logrus.Fields{"user_id": userID.Hex(), "appointment_id": appointmentID.Hex()})

	existing, err := s.ratings.FindByUserAndAppointment(ctx, userID, appointmentID)
	switch {
	case err == nil:
		existing.RatingScore = *in.RatingScore
		existing.Comment = in.Comment
		if err := s.ratings.Update(ctx, existing); err != nil {
			return nil, false, storeError(err, "rating", "update")
		}
		log.Info("Rating: replaced previous rating")
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, errs.Internal("failed to load rating", err)
	}

	rating = &models.Rating{
		UserID:        userID,
		AppointmentID: appointmentID,
		RatingScore:   *in.RatingScore,
		Comment:       in.Comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, false, storeError(err, "rating", "create")
	}
	log.Info("Rating: created")
	return rating, true, nil
}

func (s *RatingService) Get(ctx context.Context, id primitive.ObjectID) (*models.Rating, error) {
	rating, err := s.ratings.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "rating", "load")
	}
	return rating, nil
}

func (s *RatingService) Update(ctx context.Context, id primitive.ObjectID, in UpdateRatingInput) (*models.Rating, error) {
	if !in.RatingScore.Set && !in.Comment.Set {
		return nil, errs.Validation("no fields to update")
	}
	rating, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.RatingScore.Set {
		if in.RatingScore.Value == nil {
			return nil, errs.Validation("rating_score cannot be null")
		}
		if err := checkScore(*in.RatingScore.Value); err != nil {
			return nil, err
		}
		rating.RatingScore = *in.RatingScore.Value
	}
	if in.Comment.Set {
		comment := ""
		if in.Comment.Value != nil {
			comment = *in.Comment.Value
		}
		if err := checkComment(comment); err != nil {
			return nil, err
		}
		rating.Comment = comment
	}

	if err := s.ratings.Update(ctx, rating); err != nil {
		return nil, storeError(err, "rating", "update")
	}
	return rating, nil
}

func (s *RatingService) List(ctx context.Context) ([]models.Rating, error) {
	return s.list(ctx, store.RatingFilter{})
}

func (s *RatingService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Rating, error) {
	return s.list(ctx, store.RatingFilter{UserID: &userID})
}

func (s *RatingService) ListByAppointment(ctx context.Context, appointmentID primitive.ObjectID) ([]models.Rating, error) {
	return s.list(ctx, store.RatingFilter{AppointmentID: &appointmentID})
}

func (s *RatingService) list(ctx context.Context, f store.RatingFilter) ([]models.Rating, error) {
	out, err := s.ratings.List(ctx, f)
	if err != nil {
		return nil, errs.Internal("failed to retrieve ratings", err)
	}
	return out, nil
}

func (s *RatingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.ratings.Delete(ctx, id); err != nil {
		return storeError(err, "rating", "delete")
	}
	return nil
}
