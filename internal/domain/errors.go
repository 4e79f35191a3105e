package domain

import "errors"

// ErrAlignment means the similarity matrices do not share one index.
// ErrUnavailable means an optional collaborator such as the price model is not configured.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlignment       = errors.New("matrix alignment")
	ErrUnavailable     = errors.New("unavailable")
)
