package matchstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"matchvault/internal/config"
)

// MongoStore implements Store against a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg *config.Config) (*MongoStore, error) {
	timeout := time.Duration(cfg.MatchDB.Timeout) * time.Second

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(cfg.MatchDB.URI))
	if err != nil {
		return nil, fmt.Errorf("connect matchdb: %w", err)
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping matchdb: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.MatchDB.Database).Collection(cfg.MatchDB.Collection),
		timeout:    timeout,
	}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// GetMatch resolves a match by its hex identifier. Returns (nil, nil) when no
// record exists.
func (s *MongoStore) GetMatch(ctx context.Context, id string) (*Match, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("parse match id %q: %w", id, err)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var match Match
	err = s.collection.FindOne(opCtx, bson.M{"_id": objectID}).Decode(&match)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match %s: %w", id, err)
	}
	match.ID = id
	return &match, nil
}

// UpdateMatchVideo writes the durable address into the match record's video
// locator field.
func (s *MongoStore) UpdateMatchVideo(ctx context.Context, id, url string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("parse match id %q: %w", id, err)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.collection.UpdateOne(
		opCtx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"matchVideo": url, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update match video %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update match video %s: no record matched", id)
	}
	return nil
}

// MatchesWithSourceVideo lists matches carrying a source locator that does
// not already point at excludeHost.
func (s *MongoStore) MatchesWithSourceVideo(ctx context.Context, excludeHost string) ([]*Match, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{"matchVideo": bson.M{"$exists": true, "$nin": bson.A{"", nil}}}
	cursor, err := s.collection.Find(opCtx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches with video: %w", err)
	}
	defer cursor.Close(opCtx)

	var matches []*Match
	for cursor.Next(opCtx) {
		var raw struct {
			ID    primitive.ObjectID `bson:"_id"`
			Match `bson:",inline"`
		}
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		match := raw.Match
		match.ID = raw.ID.Hex()
		if excludeHost != "" && strings.Contains(match.MatchVideo, excludeHost) {
			continue
		}
		matches = append(matches, &match)
	}
	return matches, cursor.Err()
}

var _ Store = (*MongoStore)(nil)
