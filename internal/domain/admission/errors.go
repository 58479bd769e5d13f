package admission

import "errors"

var (
	ErrPayloadInvalid = errors.New("scan payload invalid")
	ErrSecretMissing  = errors.New("pass signing secret missing")
)
