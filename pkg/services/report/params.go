package report

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultAccessLogLimit = 100

	paramStartDate = "start_date"
	paramEndDate   = "end_date"
	paramProjects  = "projects"
	paramUser      = "user"
	paramLimit     = "limit"
	paramUsageType = "type"

	msgLimit     = "Limit must be an integer greater than 0."
	msgUser      = "Invalid user."
	msgUsageMode = `Report type must be "month" or "project".`
	msgProjects  = "List of projects required for Project Report"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

var validate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

type projectInput struct {
	ProjectIDs []string `validate:"required,min=1,dive,mongodb"`
}

type accessLogInput struct {
	UserID string `validate:"omitempty,email"`
	Limit  int    `validate:"gte=1"`
}

type usageInput struct {
	Mode string `validate:"required,oneof=month project"`
}

// ParseDate accepts RFC 3339 timestamps, zone-less timestamps (taken as UTC) and plain dates.
func ParseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseRange(raw url.Values) (domain.DateRange, error) {
	var r domain.DateRange
	for _, field := range []string{paramStartDate, paramEndDate} {
		value := strings.TrimSpace(raw.Get(field))
		if value == "" {
			continue
		}
		t, err := ParseDate(value)
		if err != nil {
			return r, paramError(field, value, "Invalid %s %q.", field, value)
		}
		if field == paramStartDate {
			r.Start = &t
		} else {
			r.End = &t
		}
	}

	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		end := r.End.Format(time.RFC3339)
		return r, paramError(paramEndDate, end, "End date %s is before start date %s", end, r.Start.Format(time.RFC3339))
	}
	return r, nil
}

// ParseProjectParams validates a project report request. Ids are lower-cased and de-duplicated
// keeping their first occurrence.
func ParseProjectParams(raw url.Values) (domain.ProjectReportParams, error) {
	var params domain.ProjectReportParams

	ids := make([]string, 0, len(raw[paramProjects]))
	for _, id := range raw[paramProjects] {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	if err := validate().Struct(projectInput{ProjectIDs: ids}); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && fieldErrs[0].Tag() == "mongodb" {
			value, _ := fieldErrs[0].Value().(string)
			return params, paramError(paramProjects, value, "Invalid project id %q.", value)
		}
		return params, paramError(paramProjects, "", msgProjects)
	}

	r, err := parseRange(raw)
	if err != nil {
		return params, err
	}

	params.ProjectIDs = ids
	params.Range = r
	return params, nil
}

func ParseAccessLogParams(raw url.Values) (domain.AccessLogReportParams, error) {
	params := domain.AccessLogReportParams{Limit: DefaultAccessLogLimit}

	r, err := parseRange(raw)
	if err != nil {
		return params, err
	}
	params.Range = r

	if values, ok := raw[paramLimit]; ok && len(values) > 0 {
		limit, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil {
			return params, paramError(paramLimit, values[0], msgLimit)
		}
		params.Limit = limit
	}
	params.UserID = strings.TrimSpace(raw.Get(paramUser))

	if err := validate().Struct(accessLogInput{UserID: params.UserID, Limit: params.Limit}); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && fieldErrs[0].Field() == "UserID" {
			return params, paramError(paramUser, params.UserID, msgUser)
		}
		return params, paramError(paramLimit, strconv.Itoa(params.Limit), msgLimit)
	}
	return params, nil
}

func ParseUsageParams(raw url.Values) (domain.UsageReportParams, error) {
	var params domain.UsageReportParams

	mode := raw.Get(paramUsageType)
	if err := validate().Struct(usageInput{Mode: mode}); err != nil {
		return params, paramError(paramUsageType, mode, msgUsageMode)
	}

	r, err := parseRange(raw)
	if err != nil {
		return params, err
	}

	params.Mode = domain.UsageMode(mode)
	params.Range = r
	return params, nil
}
