package accesslog

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/research-reports/pkg/metrics"
	"github.com/de-tools/research-reports/pkg/store/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads the append-only access log
type Store interface {
	// Find returns at most limit records matching filter, newest first
	Find(ctx context.Context, filter bson.D, limit int64) ([]bson.M, error)
}

type logStore struct {
	db      *mongo.Database
	breaker *mongodb.Breaker
}

func NewStore(db *mongo.Database, breaker *mongodb.Breaker) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	return &logStore{db: db, breaker: breaker}, nil
}

func (l *logStore) Find(ctx context.Context, filter bson.D, limit int64) ([]bson.M, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	start := time.Now()
	records, err := mongodb.Execute(l.breaker, func() ([]bson.M, error) {
		cur, err := l.db.Collection(mongodb.CollectionAccessLog).Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		records := make([]bson.M, 0)
		if err := cur.All(ctx, &records); err != nil {
			return nil, err
		}
		return records, nil
	})
	metrics.StoreQueryDuration.WithLabelValues("find", mongodb.CollectionAccessLog).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues("find", mongodb.CollectionAccessLog).Inc()
		return nil, fmt.Errorf("query access log: %w", err)
	}
	return records, nil
}
