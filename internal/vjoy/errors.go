package vjoy

import "errors"

var errDriverDisabled = errors.New("vjoy: driver not enabled")
