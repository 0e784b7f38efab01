package storage

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deckforge/deckforge/pkg/errors"
)

// MongoStore keeps archives as single documents keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type archiveDocument struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore wraps an existing client. The client is closed together
// with the store only when it was created by [Resolve].
func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

// resolveMongo interprets mongodb://host:port/db/collection/key... URIs.
func resolveMongo(ctx context.Context, u *url.URL) (Store, string, error) {
	segs := splitPath(u.Path)
	if len(segs) < 3 {
		return nil, "", errors.New(errors.ErrCodeInvalidInput,
			"mongodb uri needs /database/collection/key: %s", u.Redacted())
	}
	database, collection := segs[0], segs[1]
	key := strings.Join(segs[2:], "/")

	server := *u
	server.Path = ""
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(server.String()))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeStorage, err, "connect %s", server.Host)
	}
	return NewMongoStore(client, database, collection), key, nil
}

func (s *MongoStore) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	var doc archiveDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "no such document: %s", key)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "mongo find %s", key)
	}
	return doc.Data, nil
}

func (s *MongoStore) WriteBytes(ctx context.Context, key string, data []byte) error {
	doc := archiveDocument{ID: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "mongo replace %s", key)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
