package observability

import "go.uber.org/zap"

// Field aliases so call sites can attach structured fields without importing
// zap directly.
var (
	String  = zap.String
	Int     = zap.Int
	Int64   = zap.Int64
	Bool    = zap.Bool
	Float64 = zap.Float64
	Error   = zap.Error
)
