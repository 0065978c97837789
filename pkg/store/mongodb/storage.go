package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionGroups       = "groups"
	CollectionProjects     = "projects"
	CollectionSessions     = "sessions"
	CollectionAcquisitions = "acquisitions"
	CollectionJobs         = "jobs"
	CollectionUsers        = "users"
	CollectionAccessLog    = "access_log"
)

type Settings struct {
	URI            string
	Database       string
	LogDatabase    string
	ConnectTimeout time.Duration
	Breaker        BreakerSettings
}

// Storage owns the client and the two databases reports read from:
// the container database and the append-only access log database.
type Storage struct {
	client  *mongo.Client
	db      *mongo.Database
	logDB   *mongo.Database
	breaker *Breaker
}

func NewStorage(ctx context.Context, settings Settings) (*Storage, error) {
	if settings.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if settings.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	logDatabase := settings.LogDatabase
	if logDatabase == "" {
		logDatabase = settings.Database
	}

	opts := options.Client().
		ApplyURI(settings.URI).
		SetReadPreference(readpref.PrimaryPreferred())
	if settings.ConnectTimeout > 0 {
		opts.SetConnectTimeout(settings.ConnectTimeout)
		opts.SetServerSelectionTimeout(settings.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	return &Storage{
		client:  client,
		db:      client.Database(settings.Database),
		logDB:   client.Database(logDatabase),
		breaker: NewBreaker(settings.Breaker),
	}, nil
}

func (s *Storage) Database() *mongo.Database    { return s.db }
func (s *Storage) LogDatabase() *mongo.Database { return s.logDB }
func (s *Storage) Breaker() *Breaker            { return s.breaker }

func (s *Storage) Ping(ctx context.Context) error {
	_, err := Execute(s.breaker, func() (struct{}, error) {
		return struct{}{}, s.client.Ping(ctx, readpref.PrimaryPreferred())
	})
	return err
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
