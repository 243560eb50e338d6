package tax

import "errors"

var (
	ErrDeclarationNotFound  = errors.New("tax declaration not found")
	ErrMalformedDeclaration = errors.New("tax declaration is malformed")
	ErrUnknownRegime        = errors.New("unknown tax regime")
)
