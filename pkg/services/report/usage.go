package report

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/de-tools/research-reports/pkg/services/report/pipeline"
	"github.com/de-tools/research-reports/pkg/store/mongodb"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// usageReport reports per-month platform usage: sessions, completed jobs and stored MBs
type usageReport struct {
	deps   Dependencies
	params domain.UsageReportParams
}

func NewUsageReport(deps Dependencies, raw url.Values) (Report, error) {
	params, err := ParseUsageParams(raw)
	if err != nil {
		return nil, err
	}
	return &usageReport{deps: deps, params: params}, nil
}

func (r *usageReport) Type() domain.ReportType { return domain.ReportTypeUsage }

func (r *usageReport) CanGenerate(ctx context.Context, userID string) (bool, error) {
	return r.deps.Containers.IsRoot(ctx, userID)
}

func (r *usageReport) Build(ctx context.Context) (any, error) {
	if r.params.Mode != domain.UsageModeMonth {
		return nil, requestError(ErrReportModeNotImplemented, "Usage report type %q is not implemented.", r.params.Mode)
	}

	acc := newMonthAccumulator(r.params.Range)

	err := r.merge(ctx, acc, mongodb.CollectionJobs, pipeline.CompletedJobsByMonth(r.params.Range), "jobs_completed",
		func(b *domain.MonthBucket, rec bson.M) error {
			n, err := countField(rec, "jobs_completed")
			b.GearExecutionCount = n
			return err
		})
	if err != nil {
		return nil, err
	}

	err = r.merge(ctx, acc, mongodb.CollectionSessions, pipeline.SessionsByMonth(r.params.Range), "session_count",
		func(b *domain.MonthBucket, rec bson.M) error {
			n, err := countField(rec, "session_count")
			b.SessionCount = n
			return err
		})
	if err != nil {
		return nil, err
	}

	addMBs := func(b *domain.MonthBucket, rec bson.M) error {
		mbs, ok := asFloat64(rec["mb_total"])
		if !ok {
			return fmt.Errorf("%w: field \"mb_total\" is %T, want number", ErrMalformedResult, rec["mb_total"])
		}
		b.FileMBs += mbs
		return nil
	}
	for _, collection := range pipeline.StorageContainers() {
		if err := r.merge(ctx, acc, collection, pipeline.FilesByMonth(r.params.Range), "files", addMBs); err != nil {
			return nil, err
		}
		if err := r.merge(ctx, acc, collection, pipeline.AnalysisOutputsByMonth(r.params.Range), "analyses", addMBs); err != nil {
			return nil, err
		}
	}

	return domain.UsageReport{Months: acc.series()}, nil
}

// merge folds one monthly rollup into acc. A rollup that produced nothing contributes nothing.
func (r *usageReport) merge(
	ctx context.Context,
	acc *monthAccumulator,
	collection string,
	p mongo.Pipeline,
	rollup string,
	apply func(*domain.MonthBucket, bson.M) error,
) error {
	out, err := r.deps.aggregate(ctx, collection, p)
	if err != nil {
		return fmt.Errorf("%s rollup on %s: %w", rollup, collection, err)
	}

	records, err := ExtractList(out)
	if errors.Is(err, ErrAggregationFailure) {
		zerolog.Ctx(ctx).Debug().
			Str("collection", collection).
			Str("rollup", rollup).
			Err(err).
			Msg("rollup treated as empty")
		return nil
	}

	for _, rec := range records {
		key, err := monthKeyOf(rec)
		if err != nil {
			return fmt.Errorf("%s rollup on %s: %w", rollup, collection, err)
		}
		if err := apply(acc.bucket(key), rec); err != nil {
			return fmt.Errorf("%s rollup on %s: %w", rollup, collection, err)
		}
	}
	return nil
}

type monthKey struct {
	Year  int
	Month int
}

func monthKeyFromTime(t time.Time) monthKey {
	t = t.UTC()
	return monthKey{Year: t.Year(), Month: int(t.Month())}
}

func (k monthKey) before(o monthKey) bool {
	return k.Year < o.Year || (k.Year == o.Year && k.Month < o.Month)
}

func (k monthKey) next() monthKey {
	k.Month++
	if k.Month == 13 {
		k.Year++
		k.Month = 1
	}
	return k
}

func monthKeyOf(rec bson.M) (monthKey, error) {
	id, ok := asDocument(rec["_id"])
	if !ok {
		return monthKey{}, fmt.Errorf("%w: _id is %T", ErrMalformedResult, rec["_id"])
	}
	year, okYear := asInt64(id["year"])
	month, okMonth := asInt64(id["month"])
	if !okYear || !okMonth || month < 1 || month > 12 {
		return monthKey{}, fmt.Errorf("%w: invalid month %v/%v", ErrMalformedResult, id["year"], id["month"])
	}
	return monthKey{Year: int(year), Month: int(month)}, nil
}

// monthAccumulator owns the month buckets of one usage build and the [first, last] span,
// seeded from the requested window and widened by every bucket created.
type monthAccumulator struct {
	buckets map[monthKey]*domain.MonthBucket
	first   *monthKey
	last    *monthKey
}

func newMonthAccumulator(r domain.DateRange) *monthAccumulator {
	acc := &monthAccumulator{buckets: make(map[monthKey]*domain.MonthBucket)}
	if r.Start != nil {
		k := monthKeyFromTime(*r.Start)
		acc.first = &k
	}
	if r.End != nil {
		k := monthKeyFromTime(*r.End)
		acc.last = &k
	}
	return acc
}

func (a *monthAccumulator) bucket(k monthKey) *domain.MonthBucket {
	if b, ok := a.buckets[k]; ok {
		return b
	}
	b := &domain.MonthBucket{Year: k.Year, Month: k.Month}
	a.buckets[k] = b

	if a.first == nil || k.before(*a.first) {
		first := k
		a.first = &first
	}
	if a.last == nil || a.last.before(k) {
		last := k
		a.last = &last
	}
	return b
}

// series walks the span one calendar month at a time, synthesizing zero buckets for gaps.
func (a *monthAccumulator) series() []domain.MonthBucket {
	first, last := a.first, a.last
	switch {
	case first == nil && last == nil:
		return []domain.MonthBucket{}
	case first == nil:
		first = last
	case last == nil:
		last = first
	}

	months := make([]domain.MonthBucket, 0)
	for k := *first; !last.before(k); k = k.next() {
		if b, ok := a.buckets[k]; ok {
			months = append(months, *b)
			continue
		}
		months = append(months, domain.MonthBucket{Year: k.Year, Month: k.Month})
	}
	return months
}
