package rangedl

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Chunk describes one byte range of the remote file, 1-indexed as k in
// [1, maxChunks].
type Chunk struct {
	Index int
	Start int64
	End   int64
}

// Result is the value a terminal handle returned by Download/Resume
// resolves to: the completed file, or the error that ended (or paused) the
// run. It is also what the file-reference stream publishes. OpaqueID
// identifies the session on completed and file-reference results; results
// that carry only an Err leave it empty.
type Result struct {
	OpaqueID  string
	Path      string
	Completed bool
	Err       error
}

// session is the engine's private bookkeeping for a single download. It is
// never shared outside the engine goroutine that drives it, except through
// the State/Progress publishers.
type session struct {
	opaqueID        string
	url             string
	destinationPath string
	fileName        string

	totalBytes    int64
	canBuffer     bool
	maxChunks     int
	bytesPerChunk int64

	currentChunk    int
	downloadedBytes int64

	maxRetriesPerChunk int

	headers RequestHeaders

	phase Phase
}

func newSession(url, destinationPath string, maxChunks, maxRetries int) *session {
	return &session{
		opaqueID:           uuid.NewString(),
		url:                url,
		destinationPath:    destinationPath,
		maxChunks:          maxChunks,
		maxRetriesPerChunk: maxRetries,
		phase:              Idle,
	}
}

// outputPath joins the destination directory and resolved file name.
func (s *session) outputPath() string {
	if s.fileName == "" {
		return s.destinationPath
	}
	return filepath.Join(s.destinationPath, s.fileName)
}
