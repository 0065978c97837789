package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/research-reports/pkg/adapters"
	"github.com/de-tools/research-reports/pkg/models/api"
	"github.com/goccy/go-json"
)

const (
	FormatJSON  = "json"
	FormatTable = "table"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  40,
		ValueWidth: 16,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

const siteTemplate = `
Site Report ({{.GroupCount}} groups)

{{separator 3}}
{{formatRow "Group" "Projects" "Sessions"}}
{{separator 3}}
{{range .Groups}}{{formatRow .Name .ProjectCount .SessionCount}}
{{end}}{{separator 3}}
`

const projectTemplate = `{{range .Projects}}
=== {{.Name}} ({{.GroupName}}) ===
Admins: {{join .Admins ", "}}

{{separator 2}}
{{formatRow "Metric" "Count"}}
{{separator 2}}
{{formatRow "Sessions" .SessionCount}}
{{formatRow "Subjects" .SubjectsCount}}
{{formatRow "Female" .FemaleCount}}
{{formatRow "Male" .MaleCount}}
{{formatRow "Other" .OtherCount}}
{{formatRow "Over 18" .Over18Count}}
{{formatRow "Under 18" .Under18Count}}
{{formatRow "Demographics total" .DemographicsTotal}}
{{separator 2}}
{{end}}`

const usageTemplate = `
Usage Report ({{len .}} months)

{{separator 4}}
{{formatRow "Month" "Sessions" "Gear executions" "File MB"}}
{{separator 4}}
{{range .}}{{formatRow (printf "%04d-%02d" .Year .Month) .SessionCount .GearExecutionCount (printf "%.2f" .FileMBs)}}
{{end}}{{separator 4}}
`

// Handle writes report, a value returned by the report service, in the given format.
func (c *Reporter) Handle(report any, format string) error {
	out, err := adapters.MapDomainReportToAPI(report)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return c.writeJSON(out)
	case FormatTable:
		return c.writeTable(out)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func (c *Reporter) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = fmt.Fprintln(c.writer, string(data))
	return err
}

func (c *Reporter) writeTable(v any) error {
	var tmpl string
	switch v.(type) {
	case api.SiteReport:
		tmpl = siteTemplate
	case api.ProjectReport:
		tmpl = projectTemplate
	case []api.MonthUsage:
		tmpl = usageTemplate
	case []api.AccessLogEntry:
		return c.writeLines(v.([]api.AccessLogEntry))
	default:
		return fmt.Errorf("no table layout for %T", v)
	}

	funcMap := template.FuncMap{
		"formatRow": func(name string, values ...any) string {
			var b strings.Builder
			fmt.Fprintf(&b, "| %-*s |", c.config.NameWidth, name)
			for _, value := range values {
				fmt.Fprintf(&b, " %*v |", c.config.ValueWidth, value)
			}
			return b.String()
		},
		"separator": func(columns int) string {
			var b strings.Builder
			b.WriteString("+" + strings.Repeat("-", c.config.NameWidth+2) + "+")
			for i := 1; i < columns; i++ {
				b.WriteString(strings.Repeat("-", c.config.ValueWidth+2) + "+")
			}
			return b.String()
		},
		"join": strings.Join,
	}

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, v)
}

// writeLines prints access log records one JSON document per line
func (c *Reporter) writeLines(entries []api.AccessLogEntry) error {
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode access log entry: %w", err)
		}
		if _, err := fmt.Fprintln(c.writer, string(data)); err != nil {
			return err
		}
	}
	return nil
}
