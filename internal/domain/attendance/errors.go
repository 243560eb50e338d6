package attendance

import "errors"

var (
	ErrInvalidStatus = errors.New("unknown attendance status")
)
