package report

import (
	"fmt"
	"strings"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// ReconcileDemographics folds (sex, race, ethnicity) subject counts into a fresh grid and
// returns it with the grand total. Null, missing or unrecognised values land in the
// "Unknown or Not Reported" bucket.
func ReconcileDemographics(records []bson.M) (domain.DemographicsGrid, int64, error) {
	grid := domain.NewDemographicsGrid()
	var total int64

	for i, rec := range records {
		count, ok := asInt64(rec["count"])
		if !ok || count < 0 {
			return grid, 0, fmt.Errorf("%w: demographics record %d: invalid count %v", ErrMalformedResult, i, rec["count"])
		}
		cell, ok := asDocument(rec["_id"])
		if !ok {
			return grid, 0, fmt.Errorf("%w: demographics record %d: _id is %T", ErrMalformedResult, i, rec["_id"])
		}

		race := bucketOf(cell["race"], domain.IsKnownRace, nil)
		ethnicity := bucketOf(cell["ethnicity"], domain.IsKnownEthnicity, nil)
		sex := bucketOf(cell["sex"], domain.IsKnownSex, capitalize)

		grid.Add(race, ethnicity, sex, count)
		total += count
	}
	return grid, total, nil
}

func bucketOf(v any, known func(string) bool, normalize func(string) string) string {
	s, ok := v.(string)
	if !ok {
		return domain.UnknownOrNotReported
	}
	if normalize != nil {
		s = normalize(s)
	}
	if !known(s) {
		return domain.UnknownOrNotReported
	}
	return s
}

// capitalize upper-cases the first letter and lower-cases the rest; sex is stored lower-case.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
