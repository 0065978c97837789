package report

import (
	"context"
	"fmt"
	"net/url"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/services/report/pipeline"
)

// siteReport counts projects and sessions for every group
type siteReport struct {
	deps Dependencies
}

func NewSiteReport(deps Dependencies, _ url.Values) (Report, error) {
	return &siteReport{deps: deps}, nil
}

func (r *siteReport) Type() domain.ReportType { return domain.ReportTypeSite }

func (r *siteReport) CanGenerate(ctx context.Context, userID string) (bool, error) {
	return r.deps.Containers.IsRoot(ctx, userID)
}

func (r *siteReport) Build(ctx context.Context) (any, error) {
	groups, err := r.deps.Containers.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	report := domain.SiteReport{
		GroupCount: len(groups),
		Groups:     make([]domain.GroupSummary, 0, len(groups)),
	}
	for _, g := range groups {
		projectIDs, err := r.deps.Containers.ListProjectIDs(ctx, g.ID)
		if err != nil {
			return nil, err
		}

		summary := domain.GroupSummary{Name: g.Name, ProjectCount: len(projectIDs)}
		if len(projectIDs) > 0 {
			summary.SessionCount, err = r.deps.Containers.CountSessions(ctx, pipeline.SessionsInProjects(projectIDs))
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", g.ID, err)
			}
		}
		report.Groups = append(report.Groups, summary)
	}
	return report, nil
}
