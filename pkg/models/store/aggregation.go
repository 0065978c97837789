package store

import "go.mongodb.org/mongo-driver/bson"

// AggregationOutput is the raw outcome of an aggregation call.
// A nil Result means the result field was absent.
type AggregationOutput struct {
	OK     float64
	Result []bson.M
	Errmsg string
}
