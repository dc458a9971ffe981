package rangedl

import "errors"

// Error kinds surfaced by the engine. Library-defined errors are caught at
// the engine boundary, logged, and folded into the terminal handle's
// outcome; foreign errors (e.g. a raw *url.Error) are logged and re-raised
// unchanged.

// MetadataError wraps a failed or unusable HEAD probe.
type MetadataError struct {
	URL string
	Err error
}

func (e *MetadataError) Error() string {
	return "rangedl: metadata probe failed for " + e.URL + ": " + e.Err.Error()
}

func (e *MetadataError) Unwrap() error { return e.Err }

// FileNameIndeterminateError is returned when neither an explicit file name
// nor a URL-derived suffix can be resolved.
type FileNameIndeterminateError struct {
	URL string
}

func (e *FileNameIndeterminateError) Error() string {
	return "rangedl: cannot determine file name from url " + e.URL
}

// PauseError is a control-flow signal, not a true failure: it fails the
// terminal handle in flight at the moment of pausing so the caller's await
// unblocks, while the session itself remains resumable.
type PauseError struct{}

func (e *PauseError) Error() string { return "rangedl: download paused" }

// CancelError is a terminal control-flow signal.
type CancelError struct{}

func (e *CancelError) Error() string { return "rangedl: download cancelled" }

// IllegalStateError is returned by Resume when the session is not paused.
type IllegalStateError struct {
	Phase Phase
}

func (e *IllegalStateError) Error() string {
	return "rangedl: illegal state for resume: " + e.Phase.String()
}

// FetchError wraps a stream-level I/O fault during a ranged GET.
type FetchError struct {
	ChunkIndex int
	Err        error
}

func (e *FetchError) Error() string {
	return "rangedl: fetch failed for chunk: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError wraps a filesystem failure during chunk append or full-file
// write. It is treated identically to FetchError at the engine level.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "rangedl: write failed: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

var (
	// ErrPause and ErrCancel are sentinel values for errors.Is checks
	// against the control-flow signals above.
	ErrPause  = &PauseError{}
	ErrCancel = &CancelError{}
)

func isControlFlow(err error) bool {
	var p *PauseError
	var c *CancelError
	return errors.As(err, &p) || errors.As(err, &c)
}
