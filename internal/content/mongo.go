package content

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// MongoSource reads question documents from a MongoDB collection.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoSource connects to uri and verifies the connection.
func NewMongoSource(ctx context.Context, uri, database, collection string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSource{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: slog.Default(),
	}, nil
}

// FetchPhases returns the level's questions grouped into phases.
func (s *MongoSource) FetchPhases(ctx context.Context, levelID string) ([]curriculum.Phase, error) {
	filter := bson.M{"level_id": levelID}
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "phase_order", Value: 1}, {Key: "order", Value: 1}})

	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find questions for %q: %w", levelID, err)
	}
	defer cursor.Close(ctx)

	var docs []BankDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode questions for %q: %w", levelID, err)
	}

	phases, errs := GroupPhases(docs)
	for _, err := range errs {
		s.logger.Warn("skipping remote question", "level_id", levelID, "error", err)
	}
	return phases, nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
