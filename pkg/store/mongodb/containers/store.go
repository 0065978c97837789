package containers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/research-reports/pkg/metrics"
	"github.com/de-tools/research-reports/pkg/models/store"
	"github.com/de-tools/research-reports/pkg/store/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads the container hierarchy (groups, projects, sessions, ...) and the principal
// records reports are authorized against. It never writes.
type Store interface {
	IsRoot(ctx context.Context, userID string) (bool, error)
	CountAdminProjects(ctx context.Context, projectIDs []primitive.ObjectID, userID string) (int64, error)
	ListGroups(ctx context.Context) ([]store.Group, error)
	ListProjectIDs(ctx context.Context, groupID string) ([]primitive.ObjectID, error)
	GetProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]store.Project, error)
	GetUsers(ctx context.Context, userIDs []string) ([]store.User, error)
	CountSessions(ctx context.Context, filter bson.D) (int64, error)
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) (*store.AggregationOutput, error)
}

type containerStore struct {
	db      *mongo.Database
	breaker *mongodb.Breaker
}

func NewStore(db *mongo.Database, breaker *mongodb.Breaker) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	return &containerStore{db: db, breaker: breaker}, nil
}

func observe[T any](s *containerStore, operation, collection string, fn func() (T, error)) (T, error) {
	start := time.Now()
	res, err := mongodb.Execute(s.breaker, fn)
	metrics.StoreQueryDuration.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues(operation, collection).Inc()
	}
	return res, err
}

func (s *containerStore) count(ctx context.Context, collection string, filter bson.D) (int64, error) {
	return observe(s, "count", collection, func() (int64, error) {
		return s.db.Collection(collection).CountDocuments(ctx, filter)
	})
}

func (s *containerStore) IsRoot(ctx context.Context, userID string) (bool, error) {
	n, err := s.count(ctx, mongodb.CollectionUsers, bson.D{{Key: "_id", Value: userID}, {Key: "root", Value: true}})
	if err != nil {
		return false, fmt.Errorf("count root users: %w", err)
	}
	return n > 0, nil
}

func (s *containerStore) CountAdminProjects(
	ctx context.Context,
	projectIDs []primitive.ObjectID,
	userID string,
) (int64, error) {
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: projectIDs}}},
		{Key: "permissions", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "_id", Value: userID},
			{Key: "access", Value: store.AccessAdmin},
		}}}},
	}
	n, err := s.count(ctx, mongodb.CollectionProjects, filter)
	if err != nil {
		return 0, fmt.Errorf("count admin projects: %w", err)
	}
	return n, nil
}

func find[T any](ctx context.Context, s *containerStore, collection string, filter bson.D, opts ...*options.FindOptions) ([]T, error) {
	return observe(s, "find", collection, func() ([]T, error) {
		cur, err := s.db.Collection(collection).Find(ctx, filter, opts...)
		if err != nil {
			return nil, err
		}
		docs := make([]T, 0)
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	})
}

func (s *containerStore) ListGroups(ctx context.Context) ([]store.Group, error) {
	groups, err := find[store.Group](ctx, s, mongodb.CollectionGroups, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *containerStore) ListProjectIDs(ctx context.Context, groupID string) ([]primitive.ObjectID, error) {
	projects, err := find[store.Project](ctx, s, mongodb.CollectionProjects,
		bson.D{{Key: "group", Value: groupID}},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list projects of group %s: %w", groupID, err)
	}

	ids := make([]primitive.ObjectID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (s *containerStore) GetProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]store.Project, error) {
	projects, err := find[store.Project](ctx, s, mongodb.CollectionProjects,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: projectIDs}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	return projects, nil
}

func (s *containerStore) GetUsers(ctx context.Context, userIDs []string) ([]store.User, error) {
	if len(userIDs) == 0 {
		return []store.User{}, nil
	}
	users, err := find[store.User](ctx, s, mongodb.CollectionUsers,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: userIDs}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

func (s *containerStore) CountSessions(ctx context.Context, filter bson.D) (int64, error) {
	n, err := s.count(ctx, mongodb.CollectionSessions, filter)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// Aggregate runs pipeline against collection. A server-side command failure is reported
// through AggregationOutput.OK rather than as an error. Network and timeout failures return err,
// even when the driver surfaces them as a CommandError.
func (s *containerStore) Aggregate(
	ctx context.Context,
	collection string,
	pipeline mongo.Pipeline,
) (*store.AggregationOutput, error) {
	out, err := observe(s, "aggregate", collection, func() (*store.AggregationOutput, error) {
		cur, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
		if err != nil {
			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && !mongo.IsNetworkError(err) && !mongo.IsTimeout(err) {
				return &store.AggregationOutput{OK: 0, Errmsg: cmdErr.Message}, nil
			}
			return nil, err
		}
		result := make([]bson.M, 0)
		if err := cur.All(ctx, &result); err != nil {
			return nil, err
		}
		return &store.AggregationOutput{OK: 1, Result: result}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}
	return out, nil
}
