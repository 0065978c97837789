package report

import (
	"context"
	"testing"

	"github.com/de-tools/research-reports/pkg/models/store"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockContainers struct {
	mock.Mock
}

func (m *mockContainers) IsRoot(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockContainers) CountAdminProjects(ctx context.Context, ids []primitive.ObjectID, userID string) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockContainers) ListGroups(ctx context.Context) ([]store.Group, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Group), args.Error(1)
}

func (m *mockContainers) ListProjectIDs(ctx context.Context, groupID string) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func (m *mockContainers) GetProjects(ctx context.Context, ids []primitive.ObjectID) ([]store.Project, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]store.Project), args.Error(1)
}

func (m *mockContainers) GetUsers(ctx context.Context, ids []string) ([]store.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]store.User), args.Error(1)
}

func (m *mockContainers) CountSessions(ctx context.Context, filter bson.D) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockContainers) Aggregate(
	ctx context.Context,
	collection string,
	pipeline mongo.Pipeline,
) (*store.AggregationOutput, error) {
	args := m.Called(ctx, collection, pipeline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.AggregationOutput), args.Error(1)
}

type mockAccessLog struct {
	mock.Mock
}

func (m *mockAccessLog) Find(ctx context.Context, filter bson.D, limit int64) ([]bson.M, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

func okOutput(records ...bson.M) *store.AggregationOutput {
	if records == nil {
		records = []bson.M{}
	}
	return &store.AggregationOutput{OK: 1, Result: records}
}

func monthRecord(year, month int32, metric string, value any) bson.M {
	return bson.M{"_id": bson.M{"year": year, "month": month}, metric: value}
}
