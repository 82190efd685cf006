package core

import "errors"

// Construction-time validation errors. Intersection and shading never fail.
var (
	ErrZeroDirection      = errors.New("zero-length direction")
	ErrNonPositiveRadius  = errors.New("sphere radius must be positive")
	ErrZeroNormal         = errors.New("plane normal must be non-zero")
	ErrUnknownMaterial    = errors.New("unknown material id")
	ErrInvalidResolution  = errors.New("image width and height must be positive")
	ErrInvalidCamera      = errors.New("invalid camera")
	ErrInvalidAttenuation = errors.New("shadow attenuation must be within [0, 1]")
)
