package report

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/models/store"
	"github.com/de-tools/research-reports/pkg/services/report/pipeline"
	"github.com/de-tools/research-reports/pkg/store/mongodb"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// projectReport summarises sessions and subject demographics for a set of projects
type projectReport struct {
	deps       Dependencies
	params     domain.ProjectReportParams
	projectIDs []primitive.ObjectID
}

func NewProjectReport(deps Dependencies, raw url.Values) (Report, error) {
	params, err := ParseProjectParams(raw)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(params.ProjectIDs))
	for _, hex := range params.ProjectIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, paramError(paramProjects, hex, "Invalid project id %q.", hex)
		}
		ids = append(ids, id)
	}
	return &projectReport{deps: deps, params: params, projectIDs: ids}, nil
}

func (r *projectReport) Type() domain.ReportType { return domain.ReportTypeProject }

// CanGenerate requires admin access on every requested project, checked with a single count.
func (r *projectReport) CanGenerate(ctx context.Context, userID string) (bool, error) {
	n, err := r.deps.Containers.CountAdminProjects(ctx, r.projectIDs, userID)
	if err != nil {
		return false, err
	}
	return n == int64(len(r.projectIDs)), nil
}

func (r *projectReport) Build(ctx context.Context) (any, error) {
	projects, err := r.deps.Containers.GetProjects(ctx, r.projectIDs)
	if err != nil {
		return nil, err
	}

	report := domain.ProjectReport{Projects: make([]domain.ProjectSummary, 0, len(projects))}
	for _, p := range projects {
		summary, err := r.summarize(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", p.ID.Hex(), err)
		}
		report.Projects = append(report.Projects, summary)
	}
	return report, nil
}

func (r *projectReport) summarize(ctx context.Context, p store.Project) (domain.ProjectSummary, error) {
	summary := domain.ProjectSummary{
		Name:         p.Label,
		GroupName:    p.Group,
		Admins:       []string{},
		Demographics: domain.NewDemographicsGrid(),
	}

	admins, err := r.adminNames(ctx, p)
	if err != nil {
		return summary, err
	}
	summary.Admins = admins

	scope := pipeline.SessionScope{ProjectID: p.ID, Range: r.params.Range}
	summary.SessionCount, err = r.deps.Containers.CountSessions(ctx, pipeline.SessionMatch(scope))
	if err != nil {
		return summary, err
	}
	if summary.SessionCount == 0 {
		return summary, nil
	}

	opts := r.deps.pipelineOptions()

	subjects, err := r.single(ctx, pipeline.SubjectCount(scope))
	if err != nil {
		return summary, fmt.Errorf("subject count: %w", err)
	}
	if summary.SubjectsCount, err = countField(subjects, "count"); err != nil {
		return summary, err
	}

	sexes, err := r.single(ctx, pipeline.SexBreakdown(scope, opts))
	if err != nil {
		return summary, fmt.Errorf("sex breakdown: %w", err)
	}
	if summary.FemaleCount, err = countField(sexes, "female"); err != nil {
		return summary, err
	}
	if summary.MaleCount, err = countField(sexes, "male"); err != nil {
		return summary, err
	}
	if summary.OtherCount, err = countField(sexes, "other"); err != nil {
		return summary, err
	}

	cells, err := r.list(ctx, pipeline.Demographics(scope, opts))
	if err != nil {
		return summary, fmt.Errorf("demographics: %w", err)
	}
	summary.Demographics, summary.DemographicsTotal, err = ReconcileDemographics(cells)
	if err != nil {
		return summary, err
	}

	ages, err := r.single(ctx, pipeline.AgeBuckets(scope))
	if err != nil {
		return summary, fmt.Errorf("age buckets: %w", err)
	}
	if summary.Over18Count, err = countField(ages, "over_18"); err != nil {
		return summary, err
	}
	if summary.Under18Count, err = countField(ages, "under_18"); err != nil {
		return summary, err
	}

	return summary, nil
}

func (r *projectReport) adminNames(ctx context.Context, p store.Project) ([]string, error) {
	ids := make([]string, 0, len(p.Permissions))
	for _, perm := range p.Permissions {
		if perm.Access == store.AccessAdmin {
			ids = append(ids, perm.ID)
		}
	}

	users, err := r.deps.Containers.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Firstname+" "+u.Lastname)
	}
	return names, nil
}

// single runs a one-record subject pipeline; no matching subjects yields an empty record.
func (r *projectReport) single(ctx context.Context, p mongo.Pipeline) (bson.M, error) {
	out, err := r.deps.aggregate(ctx, mongodb.CollectionSessions, p)
	if err != nil {
		return nil, err
	}
	rec, err := ExtractOne(out)
	if errors.Is(err, ErrEmptyResult) {
		zerolog.Ctx(ctx).Debug().Msg("subject pipeline matched nothing")
		return bson.M{}, nil
	}
	return rec, err
}

func (r *projectReport) list(ctx context.Context, p mongo.Pipeline) ([]bson.M, error) {
	out, err := r.deps.aggregate(ctx, mongodb.CollectionSessions, p)
	if err != nil {
		return nil, err
	}
	records, err := ExtractList(out)
	if errors.Is(err, ErrEmptyResult) {
		return nil, nil
	}
	return records, err
}
