package api

type ReportType struct {
	Name string `json:"name"`
}

type GroupSummary struct {
	Name         string `json:"name"`
	ProjectCount int    `json:"project_count"`
	SessionCount int64  `json:"session_count"`
}

type SiteReport struct {
	GroupCount int            `json:"group_count"`
	Groups     []GroupSummary `json:"groups"`
}

// DemographicsRow maps ethnicity -> {sex -> count} and "Total" -> row subtotal
type DemographicsRow map[string]any

// DemographicsGrid maps race (and "Total") -> row
type DemographicsGrid map[string]DemographicsRow

type ProjectSummary struct {
	Name              string           `json:"name"`
	GroupName         string           `json:"group_name"`
	Admins            []string         `json:"admins"`
	SessionCount      int64            `json:"session_count"`
	SubjectsCount     int64            `json:"subjects_count"`
	FemaleCount       int64            `json:"female_count"`
	MaleCount         int64            `json:"male_count"`
	OtherCount        int64            `json:"other_count"`
	DemographicsGrid  DemographicsGrid `json:"demographics_grid"`
	DemographicsTotal int64            `json:"demographics_total"`
	Over18Count       int64            `json:"over_18_count"`
	Under18Count      int64            `json:"under_18_count"`
}

type ProjectReport struct {
	Projects []ProjectSummary `json:"projects"`
}

type AccessLogEntry map[string]any

type MonthUsage struct {
	Month              int     `json:"month"`
	Year               int     `json:"year"`
	SessionCount       int64   `json:"session_count"`
	GearExecutionCount int64   `json:"gear_execution_count"`
	FileMBs            float64 `json:"file_mbs"`
}

type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
