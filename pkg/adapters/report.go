package adapters

import (
	"fmt"
	"maps"

	"github.com/de-tools/research-reports/pkg/models/api"
	"github.com/de-tools/research-reports/pkg/models/domain"
)

// MapDomainReportToAPI converts any assembled domain report into its wire shape
func MapDomainReportToAPI(report any) (any, error) {
	switch r := report.(type) {
	case domain.SiteReport:
		return MapDomainSiteReportToAPI(r), nil
	case domain.ProjectReport:
		return MapDomainProjectReportToAPI(r), nil
	case domain.AccessLogReport:
		return MapDomainAccessLogReportToAPI(r), nil
	case domain.UsageReport:
		return MapDomainUsageReportToAPI(r), nil
	default:
		return nil, fmt.Errorf("unknown report %T", report)
	}
}

func MapDomainReportTypesToAPI(types []domain.ReportType) []api.ReportType {
	out := make([]api.ReportType, 0, len(types))
	for _, t := range types {
		out = append(out, api.ReportType{Name: string(t)})
	}
	return out
}

func MapDomainSiteReportToAPI(r domain.SiteReport) api.SiteReport {
	groups := make([]api.GroupSummary, 0, len(r.Groups))
	for _, g := range r.Groups {
		groups = append(groups, api.GroupSummary{
			Name:         g.Name,
			ProjectCount: g.ProjectCount,
			SessionCount: g.SessionCount,
		})
	}
	return api.SiteReport{GroupCount: r.GroupCount, Groups: groups}
}

func MapDomainProjectReportToAPI(r domain.ProjectReport) api.ProjectReport {
	projects := make([]api.ProjectSummary, 0, len(r.Projects))
	for _, p := range r.Projects {
		admins := p.Admins
		if admins == nil {
			admins = []string{}
		}
		projects = append(projects, api.ProjectSummary{
			Name:              p.Name,
			GroupName:         p.GroupName,
			Admins:            admins,
			SessionCount:      p.SessionCount,
			SubjectsCount:     p.SubjectsCount,
			FemaleCount:       p.FemaleCount,
			MaleCount:         p.MaleCount,
			OtherCount:        p.OtherCount,
			DemographicsGrid:  MapDomainDemographicsGridToAPI(p.Demographics),
			DemographicsTotal: p.DemographicsTotal,
			Over18Count:       p.Over18Count,
			Under18Count:      p.Under18Count,
		})
	}
	return api.ProjectReport{Projects: projects}
}

// MapDomainDemographicsGridToAPI flattens the grid into race -> {ethnicity -> {sex -> n}, "Total" -> n}
func MapDomainDemographicsGridToAPI(g domain.DemographicsGrid) api.DemographicsGrid {
	grid := make(api.DemographicsGrid, len(g.Races)+1)
	for race, row := range g.Races {
		grid[race] = mapDemographicsRow(row)
	}
	if g.Total != nil {
		grid[domain.TotalKey] = mapDemographicsRow(g.Total)
	}
	return grid
}

func mapDemographicsRow(row *domain.DemographicsRow) api.DemographicsRow {
	out := make(api.DemographicsRow, len(row.Ethnicities)+1)
	for eth, sexes := range row.Ethnicities {
		out[eth] = maps.Clone(map[string]int64(sexes))
	}
	out[domain.TotalKey] = row.Total
	return out
}

func MapDomainAccessLogReportToAPI(r domain.AccessLogReport) []api.AccessLogEntry {
	entries := make([]api.AccessLogEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, api.AccessLogEntry(e))
	}
	return entries
}

func MapDomainUsageReportToAPI(r domain.UsageReport) []api.MonthUsage {
	months := make([]api.MonthUsage, 0, len(r.Months))
	for _, m := range r.Months {
		months = append(months, api.MonthUsage{
			Month:              m.Month,
			Year:               m.Year,
			SessionCount:       m.SessionCount,
			GearExecutionCount: m.GearExecutionCount,
			FileMBs:            m.FileMBs,
		})
	}
	return months
}
