package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Handle(t *testing.T) {
	site := domain.SiteReport{
		GroupCount: 2,
		Groups: []domain.GroupSummary{
			{Name: "neuro", ProjectCount: 3, SessionCount: 42},
			{Name: "cardio", ProjectCount: 0, SessionCount: 0},
		},
	}
	usage := domain.UsageReport{Months: []domain.MonthBucket{
		{Year: 2024, Month: 1, SessionCount: 5, GearExecutionCount: 2, FileMBs: 1.5},
		{Year: 2024, Month: 2},
	}}
	project := domain.ProjectReport{Projects: []domain.ProjectSummary{
		{Name: "alpha", GroupName: "neuro", Admins: []string{"Ada Lovelace", "Alan Turing"}, SessionCount: 7, SubjectsCount: 3},
	}}
	accessLog := domain.AccessLogReport{Entries: []map[string]any{
		{"access_type": "view_container"},
		{"access_type": "download_file"},
	}}

	tests := []struct {
		name     string
		report   any
		format   string
		contains []string
		wantErr  string
	}{
		{
			name:     "site table",
			report:   site,
			format:   FormatTable,
			contains: []string{"Site Report (2 groups)", "| neuro", "42 |", "| cardio"},
		},
		{
			name:     "usage table",
			report:   usage,
			format:   FormatTable,
			contains: []string{"Usage Report (2 months)", "| 2024-01", "1.50 |", "| 2024-02"},
		},
		{
			name:     "project table",
			report:   project,
			format:   FormatTable,
			contains: []string{"=== alpha (neuro) ===", "Admins: Ada Lovelace, Alan Turing", "| Subjects"},
		},
		{
			name:     "site json",
			report:   site,
			format:   FormatJSON,
			contains: []string{`"group_count": 2`, `"name": "neuro"`},
		},
		{
			name:     "access log lines",
			report:   accessLog,
			format:   FormatTable,
			contains: []string{`{"access_type":"view_container"}` + "\n" + `{"access_type":"download_file"}`},
		},
		{
			name:    "unknown format",
			report:  site,
			format:  "csv",
			wantErr: `unsupported format "csv"`,
		},
		{
			name:    "unknown report",
			report:  struct{}{},
			format:  FormatJSON,
			wantErr: "unknown report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewReporter(&buf).Handle(tt.report, tt.format)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestReporter_TableAlignment(t *testing.T) {
	var buf bytes.Buffer
	err := NewReporter(&buf).Handle(domain.SiteReport{GroupCount: 1, Groups: []domain.GroupSummary{{Name: "g"}}}, FormatTable)
	require.NoError(t, err)

	var widths []int
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "|") {
			widths = append(widths, len(line))
		}
	}
	require.NotEmpty(t, widths)
	for _, w := range widths {
		assert.Equal(t, widths[0], w)
	}
}
