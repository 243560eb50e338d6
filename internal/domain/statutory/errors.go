package statutory

import "errors"

var (
	ErrConfigNotFound      = errors.New("statutory config not found")
	ErrMalformedSlabs      = errors.New("professional tax slabs overlap or are malformed")
	ErrInvalidContribution = errors.New("statutory contribution values must be non-negative")
)
