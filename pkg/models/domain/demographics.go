package domain

import "slices"

const (
	UnknownOrNotReported = "Unknown or Not Reported"
	TotalKey             = "Total"
)

var (
	Races = []string{
		"American Indian or Alaska Native",
		"Asian",
		"Native Hawaiian or Other Pacific Islander",
		"Black or African American",
		"White",
		"More Than One Race",
		UnknownOrNotReported,
	}
	Ethnicities = []string{
		"Not Hispanic or Latino",
		"Hispanic or Latino",
		UnknownOrNotReported,
	}
	Sexes = []string{
		"Female",
		"Male",
		UnknownOrNotReported,
	}
)

// SexCounts maps a sex bucket to a subject count
type SexCounts map[string]int64

// DemographicsRow is one race row (or the Total row): ethnicity -> sex -> count, plus the row subtotal
type DemographicsRow struct {
	Ethnicities map[string]SexCounts
	Total       int64
}

// DemographicsGrid is the race x ethnicity x sex count matrix with roll-up totals.
// Total.Total carries the grand total.
type DemographicsGrid struct {
	Races map[string]*DemographicsRow
	Total *DemographicsRow
}

func newDemographicsRow() *DemographicsRow {
	row := &DemographicsRow{Ethnicities: make(map[string]SexCounts, len(Ethnicities))}
	for _, e := range Ethnicities {
		counts := make(SexCounts, len(Sexes))
		for _, s := range Sexes {
			counts[s] = 0
		}
		row.Ethnicities[e] = counts
	}
	return row
}

// NewDemographicsGrid returns a zero-filled grid covering every fixed bucket
func NewDemographicsGrid() DemographicsGrid {
	grid := DemographicsGrid{
		Races: make(map[string]*DemographicsRow, len(Races)),
		Total: newDemographicsRow(),
	}
	for _, r := range Races {
		grid.Races[r] = newDemographicsRow()
	}
	return grid
}

// Add tallies count into the cell and every subtotal above it.
// Keys must already be resolved to known buckets.
func (g DemographicsGrid) Add(race, ethnicity, sex string, count int64) {
	row := g.Races[race]
	row.Ethnicities[ethnicity][sex] += count
	row.Total += count
	g.Total.Ethnicities[ethnicity][sex] += count
	g.Total.Total += count
}

func IsKnownRace(v string) bool      { return slices.Contains(Races, v) }
func IsKnownEthnicity(v string) bool { return slices.Contains(Ethnicities, v) }
func IsKnownSex(v string) bool       { return slices.Contains(Sexes, v) }
