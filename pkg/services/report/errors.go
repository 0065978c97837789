package report

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter         = errors.New("invalid report parameter")
	ErrForbidden                = errors.New("forbidden")
	ErrUnsupportedReportType    = errors.New("unsupported report type")
	ErrReportModeNotImplemented = errors.New("report mode not implemented")

	// ErrAggregationFailure means an aggregation returned nothing usable: a failed command,
	// an absent result, or the wrong number of records.
	ErrAggregationFailure = errors.New("aggregation failure")
	// ErrEmptyResult is the benign subset of ErrAggregationFailure: the command succeeded with no records.
	ErrEmptyResult = fmt.Errorf("%w: empty result", ErrAggregationFailure)
	// ErrMalformedResult means records came back but lack fields that must be present.
	ErrMalformedResult = errors.New("malformed aggregation result")
)

// ParamError describes a rejected request parameter. Message is safe to return to clients.
type ParamError struct {
	Field   string
	Value   string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

func paramError(field, value, format string, args ...any) error {
	return &ParamError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// RequestError is a request the service refuses to serve. Message is safe to return to clients;
// Err carries the sentinel used to pick the response status.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func requestError(sentinel error, format string, args ...any) error {
	return &RequestError{Message: fmt.Sprintf(format, args...), Err: sentinel}
}
