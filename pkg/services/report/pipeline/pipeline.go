// Package pipeline builds the aggregation stages and filters used by reports.
// Every builder returns a freshly constructed value; nothing is shared between calls.
package pipeline

import (
	"github.com/de-tools/research-reports/pkg/models/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// EighteenYearsInSeconds is 18 Julian years; subject ages are stored in seconds.
	EighteenYearsInSeconds = 18 * 365.25 * 24 * 60 * 60
	BytesInMegabyte        = float64(1 << 20)
)

// StorageContainers are the container collections that carry files and analyses.
func StorageContainers() []string {
	return []string{"groups", "projects", "sessions", "acquisitions"}
}

// Options tunes subject-level pipelines.
//
// OrderField, when set, sorts matched sessions ascending on that field before
// the per-subject $group, so $last picks the record with the greatest value.
// When empty, $last follows the natural retrieval order of the store, which is
// not guaranteed to be stable.
type Options struct {
	OrderField string
}

// SessionScope selects the sessions of one project within an optional window.
type SessionScope struct {
	ProjectID primitive.ObjectID
	Range     domain.DateRange
}

func rangeCondition(r domain.DateRange) bson.D {
	cond := bson.D{}
	if r.Start != nil {
		cond = append(cond, bson.E{Key: "$gte", Value: *r.Start})
	}
	if r.End != nil {
		cond = append(cond, bson.E{Key: "$lte", Value: *r.End})
	}
	return cond
}

func withRange(filter bson.D, field string, r domain.DateRange) bson.D {
	if r.IsZero() {
		return filter
	}
	return append(filter, bson.E{Key: field, Value: rangeCondition(r)})
}

// SessionMatch is the base session filter for a project report.
func SessionMatch(s SessionScope) bson.D {
	return withRange(bson.D{{Key: "project", Value: s.ProjectID}}, "created", s.Range)
}

func subjectMatch(s SessionScope) bson.D {
	return append(SessionMatch(s), bson.E{Key: "subject._id", Value: bson.D{{Key: "$ne", Value: nil}}})
}

func orderStage(opts Options) mongo.Pipeline {
	if opts.OrderField == "" {
		return nil
	}
	return mongo.Pipeline{{{Key: "$sort", Value: bson.D{{Key: opts.OrderField, Value: 1}}}}}
}

// indicator evaluates to 1 when `field op value` holds, 0 otherwise.
func indicator(op, field string, value any) bson.D {
	return bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: op, Value: bson.A{field, value}}}, 1, 0,
	}}}
}

// SubjectCount counts distinct subjects across the scoped sessions.
func SubjectCount(s SessionScope) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: subjectMatch(s)}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$subject._id"}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

// SexBreakdown sums female/male/other indicators using the last reported sex per subject.
func SexBreakdown(s SessionScope, opts Options) mongo.Pipeline {
	match := append(subjectMatch(s), bson.E{Key: "subject.sex", Value: bson.D{{Key: "$ne", Value: nil}}})

	p := mongo.Pipeline{{{Key: "$match", Value: match}}}
	p = append(p, orderStage(opts)...)
	return append(p,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$subject._id"},
			{Key: "sex", Value: bson.D{{Key: "$last", Value: "$subject.sex"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "female", Value: indicator("$eq", "$sex", "female")},
			{Key: "male", Value: indicator("$eq", "$sex", "male")},
			{Key: "other", Value: indicator("$eq", "$sex", "other")},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "female", Value: bson.D{{Key: "$sum", Value: "$female"}}},
			{Key: "male", Value: bson.D{{Key: "$sum", Value: "$male"}}},
			{Key: "other", Value: bson.D{{Key: "$sum", Value: "$other"}}},
		}}},
	)
}

// Demographics counts subjects per (sex, race, ethnicity) using the last reported values per subject.
func Demographics(s SessionScope, opts Options) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: subjectMatch(s)}}}
	p = append(p, orderStage(opts)...)
	return append(p,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$subject._id"},
			{Key: "sex", Value: bson.D{{Key: "$last", Value: "$subject.sex"}}},
			{Key: "race", Value: bson.D{{Key: "$last", Value: "$subject.race"}}},
			{Key: "ethnicity", Value: bson.D{{Key: "$last", Value: "$subject.ethnicity"}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "sex", Value: "$sex"},
				{Key: "race", Value: "$race"},
				{Key: "ethnicity", Value: "$ethnicity"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	)
}

// AgeBuckets splits subjects at 18 years using each subject's average recorded age.
func AgeBuckets(s SessionScope) mongo.Pipeline {
	match := append(subjectMatch(s), bson.E{Key: "subject.age", Value: bson.D{{Key: "$gt", Value: 0}}})

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$subject._id"},
			{Key: "age", Value: bson.D{{Key: "$avg", Value: "$subject.age"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "over_18", Value: indicator("$gte", "$age", EighteenYearsInSeconds)},
			{Key: "under_18", Value: indicator("$lt", "$age", EighteenYearsInSeconds)},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "over_18", Value: bson.D{{Key: "$sum", Value: "$over_18"}}},
			{Key: "under_18", Value: bson.D{{Key: "$sum", Value: "$under_18"}}},
		}}},
	}
}

func monthOf(field string) bson.D {
	return bson.D{
		{Key: "month", Value: bson.D{{Key: "$month", Value: field}}},
		{Key: "year", Value: bson.D{{Key: "$year", Value: field}}},
	}
}

func groupByMonth(metric string, accumulator bson.D) bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: bson.D{{Key: "month", Value: "$month"}, {Key: "year", Value: "$year"}}},
		{Key: metric, Value: accumulator},
	}}}
}

// CompletedJobsByMonth counts completed jobs per calendar month. Metric field: jobs_completed.
func CompletedJobsByMonth(r domain.DateRange) mongo.Pipeline {
	match := withRange(bson.D{}, "created", r)
	match = append(match, bson.E{Key: "state", Value: "complete"})

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: monthOf("$created")}},
		groupByMonth("jobs_completed", bson.D{{Key: "$sum", Value: 1}}),
	}
}

// SessionsByMonth counts sessions per calendar month. Metric field: session_count.
func SessionsByMonth(r domain.DateRange) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: withRange(bson.D{}, "created", r)}},
		{{Key: "$project", Value: monthOf("$created")}},
		groupByMonth("session_count", bson.D{{Key: "$sum", Value: 1}}),
	}
}

// FilesByMonth sums attached file sizes in MB per calendar month of file creation. Metric field: mb_total.
func FilesByMonth(r domain.DateRange) mongo.Pipeline {
	project := append(monthOf("$files.created"),
		bson.E{Key: "mbs", Value: bson.D{{Key: "$divide", Value: bson.A{"$files.size", BytesInMegabyte}}}})

	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$files"}},
		{{Key: "$match", Value: withRange(bson.D{}, "files.created", r)}},
		{{Key: "$project", Value: project}},
		groupByMonth("mb_total", bson.D{{Key: "$sum", Value: "$mbs"}}),
	}
}

// AnalysisOutputsByMonth sums analysis output file sizes in MB per calendar month of analysis creation.
// Metric field: mb_total.
func AnalysisOutputsByMonth(r domain.DateRange) mongo.Pipeline {
	match := bson.D{{Key: "analyses.files.output", Value: true}}
	match = withRange(match, "analyses.created", r)
	project := append(monthOf("$analyses.created"),
		bson.E{Key: "mbs", Value: bson.D{{Key: "$divide", Value: bson.A{"$analyses.files.size", BytesInMegabyte}}}})

	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$analyses"}},
		{{Key: "$unwind", Value: "$analyses.files"}},
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: project}},
		groupByMonth("mb_total", bson.D{{Key: "$sum", Value: "$mbs"}}),
	}
}

// SessionsInProjects matches sessions belonging to any of the given projects.
func SessionsInProjects(ids []primitive.ObjectID) bson.D {
	in := make(bson.A, 0, len(ids))
	for _, id := range ids {
		in = append(in, id)
	}
	return bson.D{{Key: "project", Value: bson.D{{Key: "$in", Value: in}}}}
}

// AccessLogFilter selects audit records by origin user and timestamp window.
func AccessLogFilter(userID string, r domain.DateRange) bson.D {
	filter := bson.D{}
	if userID != "" {
		filter = append(filter, bson.E{Key: "origin.id", Value: userID})
	}
	return withRange(filter, "timestamp", r)
}
