// File: database/repository/records/mongo.go
package recordsRepo

import (
	"context"
	"errors"
	"time"

	"fieldservice/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordStore is the MongoDB RecordStore.
type MongoRecordStore struct {
	services  *mongo.Collection
	blackouts *mongo.Collection
}

// NewMongoRecordStore constructs a RecordStore backed by the "services" and
// "blackouts" collections of db.
func NewMongoRecordStore(db *mongo.Database) *MongoRecordStore {
	return &MongoRecordStore{
		services:  db.Collection("services"),
		blackouts: db.Collection("blackouts"),
	}
}

func (r *MongoRecordStore) ListAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"appointmentAt": bson.M{"$gte": from.UTC(), "$lt": to.UTC()}}
	opts := options.Find().SetProjection(bson.M{"id": 1, "appointmentAt": 1})
	cursor, err := r.services.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *MongoRecordStore) GetService(ctx context.Context, id string) (*models.ServiceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.ServiceRecord
	if err := r.services.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (r *MongoRecordStore) SetAppointment(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.services.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"appointmentAt": at.UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRecordStore) ListBlackouts(ctx context.Context, f models.BlackoutFilter) ([]models.BlackoutWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	end := bson.M{}
	if !f.OverlapsFrom.IsZero() {
		end["$gt"] = f.OverlapsFrom.UTC()
	}
	if !f.EndedBefore.IsZero() {
		end["$lte"] = f.EndedBefore.UTC()
	}
	if len(end) > 0 {
		filter["end"] = end
	}
	if !f.OverlapsTo.IsZero() {
		filter["start"] = bson.M{"$lt": f.OverlapsTo.UTC()}
	}

	cursor, err := r.blackouts.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var windows []models.BlackoutWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *MongoRecordStore) CreateBlackout(ctx context.Context, w models.BlackoutWindow) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	w.ID = uuid.New().String()
	w.Start, w.End = w.Start.UTC(), w.End.UTC()
	w.CreatedAt = time.Now().UTC()
	if _, err := r.blackouts.InsertOne(ctx, w); err != nil {
		return "", err
	}
	return w.ID, nil
}

func (r *MongoRecordStore) DeleteBlackout(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.blackouts.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRecordStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.services.Database().Client().Ping(ctx, nil)
}
