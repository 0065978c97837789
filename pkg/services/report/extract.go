package report

import (
	"fmt"

	"github.com/de-tools/research-reports/pkg/models/store"
	"go.mongodb.org/mongo-driver/bson"
)

// ExtractList returns the records of a successful aggregation
func ExtractList(out *store.AggregationOutput) ([]bson.M, error) {
	if out == nil {
		return nil, fmt.Errorf("%w: no output", ErrAggregationFailure)
	}
	if out.OK != 1 {
		return nil, fmt.Errorf("%w: ok=%v: %s", ErrAggregationFailure, out.OK, out.Errmsg)
	}
	if out.Result == nil {
		return nil, fmt.Errorf("%w: result field absent", ErrAggregationFailure)
	}
	if len(out.Result) == 0 {
		return nil, ErrEmptyResult
	}
	return out.Result, nil
}

// ExtractOne returns the single record of a successful aggregation
func ExtractOne(out *store.AggregationOutput) (bson.M, error) {
	records, err := ExtractList(out)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("%w: expected one record, got %d", ErrAggregationFailure, len(records))
	}
	return records[0], nil
}
