package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrCompanyIDRequired     = errors.New("company_id claim is missing")
	ErrUserIDRequired        = errors.New("user_id claim is missing")
	ErrManagerAccessRequired = errors.New("manager or owner access required")
)
