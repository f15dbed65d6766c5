package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

func (f *fixture) completedAppointment(t *testing.T, patient *models.Patient) *models.Appointment {
	t.Helper()
	apt, err := f.appointments.Create(context.Background(), booking(patient, nil, "2026-05-11", "10:00"))
	require.NoError(t, err)
	apt, err = f.appointments.ChangeStatus(context.Background(), apt.ID, models.StatusCompleted)
	require.NoError(t, err)
	return apt
}

func rate(patient *models.Patient, apt *models.Appointment, score int, comment string) RateAppointmentInput {
	return RateAppointmentInput{
		UserID:        patient.ID.Hex(),
		AppointmentID: apt.ID.Hex(),
		RatingScore:   &score,
		Comment:       comment,
	}
}

func TestRateOverwritesPreviousRating(t *testing.T) {
	f := newFixture(t)
	ana := f.addPatient(t, "ana@example.com", true)
	apt := f.completedAppointment(t, ana)

	first, created, err := f.ratings.Rate(context.Background(), rate(ana, apt, 3, "bien"))
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := f.ratings.Rate(context.Background(), rate(ana, apt, 5, "excelente"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	stored, err := f.repos.Ratings.List(context.Background(), store.RatingFilter{AppointmentID: &apt.ID})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 5, stored[0].RatingScore)
	assert.Equal(t, "excelente", stored[0].Comment)
}

func TestRateScoreBounds(t *testing.T) {
	f := newFixture(t)
	ana := f.addPatient(t, "ana@example.com", true)
	apt := f.completedAppointment(t, ana)

	for _, score := range []int{0, 6, -1} {
		_, _, err := f.ratings.Rate(context.Background(), rate(ana, apt, score, ""))
		requireKind(t, err, errs.KindValidation)
	}
	for _, score := range []int{1, 5} {
		got, _, err := f.ratings.Rate(context.Background(), rate(ana, apt, score, ""))
		require.NoError(t, err)
		assert.Equal(t, score, got.RatingScore)
	}

	in := rate(ana, apt, 4, "")
	in.RatingScore = nil
	_, _, err := f.ratings.Rate(context.Background(), in)
	requireKind(t, err, errs.KindValidation)
}

func TestRateRequiresFinishedAppointment(t *testing.T) {
	f := newFixture(t)
	ana := f.addPatient(t, "ana@example.com", true)

	pending, err := f.appointments.Create(context.Background(), booking(ana, nil, "2026-05-11", "10:00"))
	require.NoError(t, err)
	_, _, err = f.ratings.Rate(context.Background(), rate(ana, pending, 4, ""))
	requireKind(t, err, errs.KindValidation)

	cancelled, err := f.appointments.ChangeStatus(context.Background(), pending.ID, models.StatusCancelled)
	require.NoError(t, err)
	_, _, err = f.ratings.Rate(context.Background(), rate(ana, cancelled, 4, ""))
	requireKind(t, err, errs.KindValidation)

	// Documents written before the status vocabulary was unified.
	cancelled.Status = models.StatusFinalizedLegacy
	require.NoError(t, f.repos.Appointments.Update(context.Background(), cancelled))
	_, _, err = f.ratings.Rate(context.Background(), rate(ana, cancelled, 4, ""))
	require.NoError(t, err)
}

func TestRateChecksReferences(t *testing.T) {
	f := newFixture(t)
	ana := f.addPatient(t, "ana@example.com", true)
	luis := f.addPatient(t, "luis@example.com", true)
	apt := f.completedAppointment(t, ana)

	ghost := &models.Patient{Base: models.Base{ID: primitive.NewObjectID()}}
	_, _, err := f.ratings.Rate(context.Background(), rate(ghost, apt, 4, ""))
	requireKind(t, err, errs.KindNotFound)

	missing := &models.Appointment{Base: models.Base{ID: primitive.NewObjectID()}}
	_, _, err = f.ratings.Rate(context.Background(), rate(ana, missing, 4, ""))
	requireKind(t, err, errs.KindNotFound)

	_, _, err = f.ratings.Rate(context.Background(), rate(luis, apt, 4, ""))
	requireKind(t, err, errs.KindPermission)

	_, _, err = f.ratings.Rate(context.Background(), rate(ana, apt, 4, strings.Repeat("a", 501)))
	requireKind(t, err, errs.KindValidation)
}

func TestUpdateRating(t *testing.T) {
	f := newFixture(t)
	ana := f.addPatient(t, "ana@example.com", true)
	apt := f.completedAppointment(t, ana)
	rating, _, err := f.ratings.Rate(context.Background(), rate(ana, apt, 3, "regular"))
	require.NoError(t, err)

	got, err := f.ratings.Update(context.Background(), rating.ID, UpdateRatingInput{RatingScore: models.Some(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, got.RatingScore)
	assert.Equal(t, "regular", got.Comment, "absent comment is kept")

	got, err = f.ratings.Update(context.Background(), rating.ID, UpdateRatingInput{Comment: models.Optional[string]{Set: true}})
	require.NoError(t, err)
	assert.Equal(t, "", got.Comment, "null comment clears it")
	assert.Equal(t, 4, got.RatingScore)

	got, err = f.ratings.Update(context.Background(), rating.ID, UpdateRatingInput{Comment: models.Some("muy bien")})
	require.NoError(t, err)
	assert.Equal(t, "muy bien", got.Comment)

	_, err = f.ratings.Update(context.Background(), rating.ID, UpdateRatingInput{RatingScore: models.Some(6)})
	requireKind(t, err, errs.KindValidation)
	_, err = f.ratings.Update(context.Background(), rating.ID, UpdateRatingInput{RatingScore: models.Optional[int]{Set: true}})
	requireKind(t, err, errs.KindValidation)
	_, err = f.ratings.Update(context.Background(), rating.ID, UpdateRatingInput{})
	requireKind(t, err, errs.KindValidation)

	stored, err := f.ratings.Get(context.Background(), rating.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.RatingScore)
	assert.Equal(t, "muy bien", stored.Comment)
}

func TestListAndDeleteRatings(t *testing.T) {
	f := newFixture(t)
	ana := f.addPatient(t, "ana@example.com", true)
	apt := f.completedAppointment(t, ana)
	rating, _, err := f.ratings.Rate(context.Background(), rate(ana, apt, 5, ""))
	require.NoError(t, err)

	byUser, err := f.ratings.ListByUser(context.Background(), ana.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	byAppointment, err := f.ratings.ListByAppointment(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, byAppointment)

	require.NoError(t, f.ratings.Delete(context.Background(), rating.ID))
	all, err := f.ratings.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
