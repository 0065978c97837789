package report

import (
	"context"
	"net/url"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/services/report/pipeline"
)

// accessLogReport returns the newest audit records, optionally narrowed to one user and a window
type accessLogReport struct {
	deps   Dependencies
	params domain.AccessLogReportParams
}

func NewAccessLogReport(deps Dependencies, raw url.Values) (Report, error) {
	params, err := ParseAccessLogParams(raw)
	if err != nil {
		return nil, err
	}
	return &accessLogReport{deps: deps, params: params}, nil
}

func (r *accessLogReport) Type() domain.ReportType { return domain.ReportTypeAccessLog }

func (r *accessLogReport) CanGenerate(ctx context.Context, userID string) (bool, error) {
	return r.deps.Containers.IsRoot(ctx, userID)
}

func (r *accessLogReport) Build(ctx context.Context) (any, error) {
	ctx, cancel := r.deps.withDeadline(ctx)
	defer cancel()

	filter := pipeline.AccessLogFilter(r.params.UserID, r.params.Range)
	records, err := r.deps.AccessLog.Find(ctx, filter, int64(r.params.Limit))
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		entries = append(entries, map[string]any(rec))
	}
	return domain.AccessLogReport{Entries: entries}, nil
}
