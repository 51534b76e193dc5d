package query

import "errors"

// Sentinel errors for the query layer.
//
// ErrFieldRequired and ErrInvalidRange are client errors: the request
// itself is wrong and no store query is issued. Everything else the
// layer returns wraps a store failure.
var (
	// ErrFieldRequired indicates a history request without a field name.
	ErrFieldRequired = errors.New("query: field parameter required")

	// ErrInvalidRange indicates an unusable history range start.
	ErrInvalidRange = errors.New("query: invalid range start")
)
