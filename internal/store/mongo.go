package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"

	"github.com/A-zanke/alumni-matcher/internal/profile"
)

const (
	defaultCollection = "users"
	defaultDatabase   = "test"
	connectTimeout    = 10 * time.Second
)

var profileProjection = bson.D{
	{Key: "name", Value: 1},
	{Key: "username", Value: 1},
	{Key: "avatarUrl", Value: 1},
	{Key: "department", Value: 1},
	{Key: "graduationYear", Value: 1},
	{Key: "company", Value: 1},
	{Key: "industry", Value: 1},
	{Key: "skills", Value: 1},
	{Key: "careerInterests", Value: 1},
	{Key: "role", Value: 1},
}

var alumniRole = primitive.Regex{Pattern: `^\s*alumni\s*$`, Options: "i"}

// MongoStore reads profiles from the users collection of a MongoDB database.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	name       string
	logger     *zap.Logger
}

func OpenMongo(ctx context.Context, cfg MongoConfig, logger *zap.Logger) (*MongoStore, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("mongo uri is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dbName, err := databaseName(uri, cfg.Database)
	if err != nil {
		return nil, err
	}
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		collection = defaultCollection
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	logger.Debug("connected to mongo",
		zap.String("database", dbName),
		zap.String("collection", collection),
	)

	return &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(collection),
		name:       "mongo:" + dbName + "/" + collection,
		logger:     logger,
	}, nil
}

// databaseName prefers the database named in the URI path, then the
// configured one, then MONGO_DB_NAME, then "test".
func databaseName(uri, configured string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parsing mongo uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	if name := strings.TrimSpace(configured); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(os.Getenv("MONGO_DB_NAME")); name != "" {
		return name, nil
	}
	return defaultDatabase, nil
}

func (s *MongoStore) Name() string { return s.name }

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) Student(ctx context.Context, id string) (*profile.Profile, error) {
	keys := bson.A{id}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		keys = append(keys, oid)
	}

	var doc bson.M
	err := s.collection.FindOne(ctx,
		bson.M{"_id": bson.M{"$in": keys}},
		options.FindOne().SetProjection(profileProjection),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding student %s: %w", id, err)
	}

	p, err := profile.Decode(normalizeDocument(doc))
	if err != nil {
		return nil, &profile.DecodeError{Origin: s.name, ID: id, Err: err}
	}
	return p, nil
}

func (s *MongoStore) Alumni(ctx context.Context) (*profile.Profiles, error) {
	return s.find(ctx, bson.M{"role": alumniRole})
}

func (s *MongoStore) Students(ctx context.Context) (*profile.Profiles, error) {
	return s.find(ctx, bson.M{"role": bson.M{"$not": alumniRole}})
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) (*profile.Profiles, error) {
	cursor, err := s.collection.Find(ctx, filter,
		options.Find().SetProjection(profileProjection).SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}

	raw := make([]any, 0, len(docs))
	for _, doc := range docs {
		raw = append(raw, normalizeDocument(doc))
	}
	s.logger.Debug("loaded profiles", zap.Int("count", len(raw)))

	return profile.DecodeAll(s.name, raw)
}

// normalizeDocument turns BSON specific values into plain Go values the
// profile decoder understands.
func normalizeDocument(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case bson.M:
		return normalizeDocument(val)
	case bson.D:
		return normalizeDocument(val.Map())
	case bson.A:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, normalizeValue(item))
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	default:
		return v
	}
}
