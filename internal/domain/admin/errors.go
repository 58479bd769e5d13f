package admin

import "errors"

var ErrAdminLimitReached = errors.New("admin account limit reached")
