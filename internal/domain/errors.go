package domain

import "errors"

// ErrInvalidConfiguration is returned when a coefficient set is constructed with
// inconsistent parameters, e.g. an empty harmonic order range.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrShapeMismatch is returned by evaluation when the coefficient tensor does not
// match the number of stored (n, m) entries or the harmonic order extents.
var ErrShapeMismatch = errors.New("coefficient tensor shape mismatch")
