// Package report validates, authorizes and assembles reports over the container hierarchy
// and the access log.
package report

import (
	"context"
	"time"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/models/store"
	"github.com/de-tools/research-reports/pkg/services/report/pipeline"
	"github.com/de-tools/research-reports/pkg/store/mongodb/accesslog"
	"github.com/de-tools/research-reports/pkg/store/mongodb/containers"
	"go.mongodb.org/mongo-driver/mongo"
)

// Report is one validated request for a report type, bound to its data sources.
type Report interface {
	Type() domain.ReportType
	// CanGenerate reports whether userID may see this report without superuser elevation
	CanGenerate(ctx context.Context, userID string) (bool, error)
	// Build runs the queries and returns the assembled domain report
	Build(ctx context.Context) (any, error)
}

type Settings struct {
	// PipelineTimeout bounds each store round trip. Zero leaves only the caller's deadline.
	PipelineTimeout time.Duration
	// SubjectOrderField, when set, orders sessions before per-subject "last value" grouping
	SubjectOrderField string
}

type Dependencies struct {
	Containers containers.Store
	AccessLog  accesslog.Store
	Settings   Settings
}

func (d Dependencies) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Settings.PipelineTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Settings.PipelineTimeout)
}

func (d Dependencies) aggregate(
	ctx context.Context,
	collection string,
	p mongo.Pipeline,
) (*store.AggregationOutput, error) {
	ctx, cancel := d.withDeadline(ctx)
	defer cancel()
	return d.Containers.Aggregate(ctx, collection, p)
}

func (d Dependencies) pipelineOptions() pipeline.Options {
	return pipeline.Options{OrderField: d.Settings.SubjectOrderField}
}
