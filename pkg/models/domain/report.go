package domain

import "time"

type ReportType string

const (
	ReportTypeSite      ReportType = "site"
	ReportTypeProject   ReportType = "project"
	ReportTypeAccessLog ReportType = "accesslog"
	ReportTypeUsage     ReportType = "usage"
)

// Principal is the authenticated actor requesting a report
type Principal struct {
	ID        string
	Superuser bool
}

// DateRange is an inclusive, optionally open-ended time window
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

type ProjectReportParams struct {
	ProjectIDs []string // ObjectID hex, de-duplicated, request order
	Range      DateRange
}

type AccessLogReportParams struct {
	Range  DateRange
	UserID string
	Limit  int
}

type UsageMode string

const (
	UsageModeMonth   UsageMode = "month"
	UsageModeProject UsageMode = "project"
)

type UsageReportParams struct {
	Range DateRange
	Mode  UsageMode
}

type GroupSummary struct {
	Name         string
	ProjectCount int
	SessionCount int64
}

type SiteReport struct {
	GroupCount int
	Groups     []GroupSummary
}

type ProjectSummary struct {
	Name              string
	GroupName         string
	Admins            []string
	SessionCount      int64
	SubjectsCount     int64
	FemaleCount       int64
	MaleCount         int64
	OtherCount        int64
	Demographics      DemographicsGrid
	DemographicsTotal int64
	Over18Count       int64
	Under18Count      int64
}

type ProjectReport struct {
	Projects []ProjectSummary
}

// AccessLogReport holds raw audit-log records, newest first
type AccessLogReport struct {
	Entries []map[string]any
}

type MonthBucket struct {
	Year               int
	Month              int // 1-12
	SessionCount       int64
	GearExecutionCount int64
	FileMBs            float64
}

type UsageReport struct {
	Months []MonthBucket
}
