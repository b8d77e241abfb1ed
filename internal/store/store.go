// Package store implements the document operations of the API on MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const (
	ServiceCollection = "service"
	BookingCollection = "booking"
	UserCollection    = "users"
	DoctorCollection  = "doctors"
)

// UpsertResult mirrors the counters MongoDB reports for an update.
type UpsertResult struct {
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

type Mongo struct {
	db      *mongo.Database
	timeout time.Duration
}

// New wraps db. Every operation is bounded by timeout on top of the caller's context.
func New(db *mongo.Database, timeout time.Duration) *Mongo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Mongo{db: db, timeout: timeout}
}

func (m *Mongo) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, m.timeout)
}

// EnsureIndexes creates the unique indexes the API relies on: one user per
// email and one booking per (treatment, date, patient).
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	_, err := m.db.Collection(UserCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = m.db.Collection(BookingCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "treatment", Value: 1},
			{Key: "date", Value: 1},
			{Key: "patient", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_treatment_date_patient"),
	})
	if err != nil {
		return fmt.Errorf("create booking index: %w", err)
	}
	return nil
}

// Ping checks the connection to the primary.
func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := m.ctx(ctx)
	defer cancel()
	return m.db.Client().Ping(ctx, nil)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) ([]T, error) {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Mongo) ListServices(ctx context.Context) ([]models.Service, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	services, err := findAll[models.Service](ctx, m.db.Collection(ServiceCollection), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

func (m *Mongo) BookingsByDate(ctx context.Context, date string) ([]models.Booking, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	bookings, err := findAll[models.Booking](ctx, m.db.Collection(BookingCollection), bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("bookings for %q: %w", date, err)
	}
	return bookings, nil
}

func (m *Mongo) BookingsByPatient(ctx context.Context, patient string) ([]models.Booking, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	bookings, err := findAll[models.Booking](ctx, m.db.Collection(BookingCollection), bson.M{"patient": patient})
	if err != nil {
		return nil, fmt.Errorf("bookings of %q: %w", patient, err)
	}
	return bookings, nil
}

// InsertBookingIfAbsent stores booking unless one with the same
// (treatment, date, patient) already exists. It returns the stored booking and
// true when it inserted, or the existing booking and false otherwise. The check
// and the insert are a single upsert, so concurrent identical requests cannot
// both insert.
func (m *Mongo) InsertBookingIfAbsent(ctx context.Context, booking models.Booking) (models.Booking, bool, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	filter := bson.M{
		"treatment": booking.Treatment,
		"date":      booking.Date,
		"patient":   booking.Patient,
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	coll := m.db.Collection(BookingCollection)
	var existing models.Booking
	err := coll.FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": booking}, opts).Decode(&existing)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return booking, true, nil
	case mongo.IsDuplicateKeyError(err):
		// Lost an upsert race against an identical request; report the winner.
		if err := coll.FindOne(ctx, filter).Decode(&existing); err != nil {
			return models.Booking{}, false, fmt.Errorf("read conflicting booking: %w", err)
		}
		return existing, false, nil
	case err != nil:
		return models.Booking{}, false, fmt.Errorf("insert booking: %w", err)
	}
	return existing, false, nil
}

func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	users, err := findAll[models.User](ctx, m.db.Collection(UserCollection), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// FindUserByEmail returns nil, nil when no user has that email.
func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	var user models.User
	err := m.db.Collection(UserCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", email, err)
	}
	return &user, nil
}

// UpsertUser sets fields on the user keyed by email, creating it if needed.
// The email itself is always written so a new document carries it.
func (m *Mongo) UpsertUser(ctx context.Context, email string, fields bson.M) (UpsertResult, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	set := bson.M{"email": email}
	for k, v := range fields {
		set[k] = v
	}

	res, err := m.db.Collection(UserCollection).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert user %q: %w", email, err)
	}
	return UpsertResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

// SetRole updates the role of an existing user. It never creates a user.
func (m *Mongo) SetRole(ctx context.Context, email, role string) (UpsertResult, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	res, err := m.db.Collection(UserCollection).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("set role of %q: %w", email, err)
	}
	return UpsertResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (m *Mongo) InsertDoctor(ctx context.Context, doctor models.Doctor) (primitive.ObjectID, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	if doctor.ID.IsZero() {
		doctor.ID = primitive.NewObjectID()
	}
	if _, err := m.db.Collection(DoctorCollection).InsertOne(ctx, doctor); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert doctor: %w", err)
	}
	return doctor.ID, nil
}

func (m *Mongo) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	doctors, err := findAll[models.Doctor](ctx, m.db.Collection(DoctorCollection), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// DeleteDoctor returns the number of removed documents (0 or 1).
func (m *Mongo) DeleteDoctor(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := m.ctx(ctx)
	defer cancel()

	res, err := m.db.Collection(DoctorCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete doctor %s: %w", id.Hex(), err)
	}
	return res.DeletedCount, nil
}
