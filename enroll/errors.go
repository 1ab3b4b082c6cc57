package enroll

import "errors"

// ErrNoCurrentSnapshot is returned when the mandatory current enrollment
// file cannot be loaded from any configured source.
var ErrNoCurrentSnapshot = errors.New("enroll: current enrollment snapshot unavailable")

// ErrSourceExhausted is returned when every source in an ordered list failed.
var ErrSourceExhausted = errors.New("enroll: all sources exhausted")
