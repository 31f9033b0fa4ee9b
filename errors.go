package clustering

import "errors"

var (
	// ErrIncomparableDimensions is returned when a distance is requested
	// between positions of different dimensionality, or when an operand is nil.
	ErrIncomparableDimensions = errors.New("clustering: incomparable dimensions")

	// ErrInsufficientData is returned when there are too few positions to
	// run the requested algorithm.
	ErrInsufficientData = errors.New("clustering: insufficient data")

	// ErrMalformedTrace is returned by ParseAgglomerativeTrace when the input
	// does not follow the agglomerative trace layout.
	ErrMalformedTrace = errors.New("clustering: malformed trace")
)

// TraceError reports a failure to serialize a clustering trace. It is kept
// distinct from algorithm errors so that a caller can still use the
// in-memory result when only the trace could not be written.
type TraceError struct {
	// Op names the trace being written ("agglomerative" or "kmeans").
	Op  string
	Err error
}

func (e *TraceError) Error() string {
	return "clustering: writing " + e.Op + " trace: " + e.Err.Error()
}

func (e *TraceError) Unwrap() error { return e.Err }
