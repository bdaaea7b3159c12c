package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/netview/pkg/cache"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
)

// KindMongo identifies [MongoSource].
const KindMongo = "mongo"

// MongoConfig locates the network collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoSource fetches documents by their name field.
type MongoSource struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoSource connects and pings the server.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSource{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		timeout: cfg.Timeout,
	}, nil
}

func (*MongoSource) Kind() string { return KindMongo }

// Load retries network errors and timeouts with backoff.
func (s *MongoSource) Load(ctx context.Context, name string) (graph.Document, error) {
	var doc graph.Document
	err := cache.RetryWithBackoff(ctx, func() error {
		doc = graph.Document{}
		err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
		switch {
		case err == nil:
			return nil
		case stderrors.Is(err, mongo.ErrNoDocuments):
			return errors.New(errors.ErrCodeNotFound, "network %q not in %s", name, s.coll.Name())
		case mongo.IsNetworkError(err) || mongo.IsTimeout(err):
			return cache.Retryable(err)
		default:
			return errors.Wrap(errors.ErrCodeInvalidNetwork, err, "decode network %q", name)
		}
	})
	if err != nil {
		return graph.Document{}, err
	}
	normalizeBSON(doc)
	return doc, nil
}

// Put upserts doc under doc.Name.
func (s *MongoSource) Put(ctx context.Context, doc graph.Document) error {
	if doc.Name == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "document has no name")
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"name": doc.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store network %q: %w", doc.Name, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// normalizeBSON flattens nested BSON documents in attribute payloads so
// they read like their JSON equivalents.
func normalizeBSON(doc graph.Document) {
	for _, n := range doc.Elements.Nodes {
		normalizeAttrs(n.Data)
	}
	for _, e := range doc.Elements.Edges {
		normalizeAttrs(e.Data)
	}
}

func normalizeAttrs(a graph.Attributes) {
	for k, v := range a {
		if d, ok := v.(bson.D); ok {
			a[k] = d.Map()
		}
	}
}
