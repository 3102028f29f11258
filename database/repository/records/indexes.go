// FILE: database/repository/records/indexes.go
package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes both collections are queried by.
func (r *MongoRecordStore) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.services.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Availability scans one local day of appointments.
		{
			Keys:    bson.D{{Key: "appointmentAt", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("appointment_at_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create services indexes: %w", err)
	}

	_, err = r.blackouts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "start", Value: -1}, {Key: "end", Value: 1}},
			Options: options.Index().SetName("start_end_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blackouts indexes: %w", err)
	}
	return nil
}
