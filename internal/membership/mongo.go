package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOpts struct {
	URI        string
	Database   string
	Collection string
}

// MongoDirectory reads members from a MongoDB collection
type MongoDirectory struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoDirectory(ctx context.Context, o MongoOpts) (*MongoDirectory, error) {
	if o.URI == "" || o.Database == "" {
		return nil, errors.New("membership database uri and name are required")
	}

	if o.Collection == "" {
		o.Collection = "members"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to membership database, %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping membership database, %w", err)
	}

	return &MongoDirectory{
		client:     client,
		collection: client.Database(o.Database).Collection(o.Collection),
	}, nil
}

func (m *MongoDirectory) Lookup(ctx context.Context, id string) (*Member, error) {
	var member Member

	err := m.collection.FindOne(ctx, bson.M{"membershipId": strings.TrimSpace(id)}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &member, nil
}

func (m *MongoDirectory) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
