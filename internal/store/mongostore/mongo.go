// Package mongostore implements the store repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

// Collection names.
const (
	AdminsCollection       = "admins"
	AssistantsCollection   = "assistants"
	DoctorsCollection      = "doctors"
	PatientsCollection     = "patients"
	ServicesCollection     = "services"
	AppointmentsCollection = "appointments"
	RatingsCollection      = "ratings"
)

// Connect opens a client, pings the server and returns the named database.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, client.Database(database), nil
}

// New returns repositories bound to the collections of db.
func New(db *mongo.Database) store.Repositories {
	return store.Repositories{
		Admins:       &accounts{c: collection[models.Account]{db.Collection(AdminsCollection)}},
		Assistants:   &accounts{c: collection[models.Account]{db.Collection(AssistantsCollection)}},
		Doctors:      &doctors{c: collection[models.Doctor]{db.Collection(DoctorsCollection)}},
		Patients:     &patients{c: collection[models.Patient]{db.Collection(PatientsCollection)}},
		Services:     &services{c: collection[models.Service]{db.Collection(ServicesCollection)}},
		Appointments: &appointments{c: collection[models.Appointment]{db.Collection(AppointmentsCollection)}},
		Ratings:      &ratings{c: collection[models.Rating]{db.Collection(RatingsCollection)}},
	}
}

// EnsureIndexes creates the unique and lookup indexes every collection
// relies on. Creating an index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName(store.IndexEmail).SetUnique(true),
	}

	indexes := map[string][]mongo.IndexModel{
		AdminsCollection:     {emailIndex},
		AssistantsCollection: {emailIndex},
		DoctorsCollection: {
			emailIndex,
			{
				Keys: bson.D{{Key: "dui", Value: 1}},
				Options: options.Index().SetName(store.IndexDUI).SetUnique(true).
					SetPartialFilterExpression(bson.M{"dui": bson.M{"$type": "string"}}),
			},
		},
		PatientsCollection: {
			emailIndex,
			{
				Keys:    bson.D{{Key: "recordNumber", Value: 1}},
				Options: options.Index().SetName(store.IndexRecordNumber).SetUnique(true),
			},
		},
		ServicesCollection: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetName(store.IndexName).SetUnique(true),
			},
		},
		AppointmentsCollection: {
			{
				Keys: bson.D{{Key: "slot_key", Value: 1}},
				Options: options.Index().SetName(store.IndexSlot).SetUnique(true).
					SetPartialFilterExpression(bson.M{"slot_key": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "appointment_date", Value: 1}}},
			{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		},
		RatingsCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "appointment_id", Value: 1}},
				Options: options.Index().SetName(store.IndexUserRating).SetUnique(true),
			},
			{Keys: bson.D{{Key: "appointment_id", Value: 1}}},
		},
	}

	for name, specs := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", name, err)
		}
	}
	return nil
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return &store.DuplicateError{Index: duplicateIndexName(err.Error())}
	}
	return err
}

// duplicateIndexName pulls the index name out of an E11000 message such as
// "E11000 duplicate key error collection: db.patients index: email dup key".
func duplicateIndexName(msg string) string {
	_, rest, ok := strings.Cut(msg, "index: ")
	if !ok {
		return "unknown"
	}
	name, _, _ := strings.Cut(rest, " ")
	return name
}

// collection wraps the CRUD calls shared by every repository.
type collection[T any] struct {
	coll *mongo.Collection
}

func (c collection[T]) findOne(ctx context.Context, filter any) (*T, error) {
	var out T
	if err := c.coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (c collection[T]) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make([]T, 0)
	}
	return out, nil
}

func (c collection[T]) exists(ctx context.Context, filter any) (bool, error) {
	n, err := c.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (c collection[T]) insert(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return translate(err)
}

func (c collection[T]) replace(ctx context.Context, id any, doc any) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id any) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func now() time.Time { return time.Now().UTC() }
