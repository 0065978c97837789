package adapters

import (
	"testing"

	"github.com/de-tools/research-reports/pkg/models/api"
	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDomainReportToAPI(t *testing.T) {
	tests := []struct {
		name     string
		report   any
		expected any
	}{
		{
			name: "site",
			report: domain.SiteReport{GroupCount: 1, Groups: []domain.GroupSummary{
				{Name: "Neuroscience", ProjectCount: 2, SessionCount: 12},
			}},
			expected: api.SiteReport{GroupCount: 1, Groups: []api.GroupSummary{
				{Name: "Neuroscience", ProjectCount: 2, SessionCount: 12},
			}},
		},
		{
			name:     "usage",
			report:   domain.UsageReport{Months: []domain.MonthBucket{{Year: 2024, Month: 9, SessionCount: 2, FileMBs: 1.5}}},
			expected: []api.MonthUsage{{Year: 2024, Month: 9, SessionCount: 2, FileMBs: 1.5}},
		},
		{
			name:     "access log",
			report:   domain.AccessLogReport{Entries: []map[string]any{{"access_type": "user_login"}}},
			expected: []api.AccessLogEntry{{"access_type": "user_login"}},
		},
		{
			name:     "empty usage is an empty list",
			report:   domain.UsageReport{},
			expected: []api.MonthUsage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapDomainReportToAPI(tt.report)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := MapDomainReportToAPI(struct{}{})
	assert.Error(t, err)
}

func TestMapDomainProjectReportToAPI(t *testing.T) {
	grid := domain.NewDemographicsGrid()
	grid.Add("Asian", "Hispanic or Latino", "Female", 2)

	out := MapDomainProjectReportToAPI(domain.ProjectReport{Projects: []domain.ProjectSummary{{
		Name:              "Study A",
		GroupName:         "neuro",
		SessionCount:      3,
		Demographics:      grid,
		DemographicsTotal: 2,
	}}})

	require.Len(t, out.Projects, 1)
	p := out.Projects[0]
	assert.Equal(t, []string{}, p.Admins)
	assert.Len(t, p.DemographicsGrid, len(domain.Races)+1)
	assert.Equal(t, int64(2), p.DemographicsGrid["Asian"][domain.TotalKey])
	assert.Equal(t, int64(2), p.DemographicsGrid[domain.TotalKey][domain.TotalKey])

	body, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	for _, key := range []string{
		"name", "group_name", "admins", "session_count", "subjects_count", "female_count", "male_count",
		"other_count", "demographics_grid", "demographics_total", "over_18_count", "under_18_count",
	} {
		assert.Contains(t, decoded, key)
	}
	asian := decoded["demographics_grid"].(map[string]any)["Asian"].(map[string]any)
	assert.EqualValues(t, 2, asian["Hispanic or Latino"].(map[string]any)["Female"])
}
