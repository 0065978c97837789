package report

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAccessLogReport_Build(t *testing.T) {
	logs := &mockAccessLog{}
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	expectedFilter := bson.D{
		{Key: "origin.id", Value: "ada@example.com"},
		{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: start}}},
	}
	logs.On("Find", mock.Anything, expectedFilter, int64(2)).Return([]bson.M{
		{"access_type": "user_login", "origin": bson.M{"id": "ada@example.com"}},
		{"access_type": "view_container", "origin": bson.M{"id": "ada@example.com"}},
	}, nil)

	raw := url.Values{"user": {"ada@example.com"}, "limit": {"2"}, "start_date": {"2024-02-01"}}
	r, err := NewAccessLogReport(Dependencies{AccessLog: logs, Settings: Settings{PipelineTimeout: time.Second}}, raw)
	require.NoError(t, err)

	out, err := r.Build(context.Background())
	require.NoError(t, err)

	report := out.(domain.AccessLogReport)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "user_login", report.Entries[0]["access_type"])
	logs.AssertExpectations(t)
}

func TestAccessLogReport_DefaultLimit(t *testing.T) {
	logs := &mockAccessLog{}
	logs.On("Find", mock.Anything, bson.D{}, int64(DefaultAccessLogLimit)).Return([]bson.M{}, nil)

	r, err := NewAccessLogReport(Dependencies{AccessLog: logs}, url.Values{})
	require.NoError(t, err)

	out, err := r.Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.(domain.AccessLogReport).Entries)
}

func TestNewAccessLogReport_InvalidLimit(t *testing.T) {
	_, err := NewAccessLogReport(Dependencies{}, url.Values{"limit": {"0"}})
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.EqualError(t, err, "Limit must be an integer greater than 0.")
}
