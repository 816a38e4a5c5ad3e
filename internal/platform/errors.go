package platform

import "errors"

// ErrNoMethod means no inhibition method is usable in this environment.
var ErrNoMethod = errors.New("no usable inhibition method found")
