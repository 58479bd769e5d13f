package member

import "errors"

var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentifierTaken    = errors.New("identifier already taken")
	ErrMemberNumberTaken  = errors.New("member number already taken")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPointsNegative     = errors.New("points cannot go negative")
)
