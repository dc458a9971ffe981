package rangedl

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/solberg-dev/rangedl/internal/fsutil"
)

// Options configures a new Engine. Zero values fall back to the defaults
// named in the data model: 300 max chunks, 3 retries per chunk.
type Options struct {
	DestinationPath string
	FileName        string
	MaxChunks       int
	MaxRetries      int
	Headers         RequestHeaders
	Log             *logrus.Entry
}

// RequestHeaders carries user-supplied custom headers and cookie, applied
// to every HTTP request the engine issues: the metadata probe and every
// ranged (or single-shot) fetch alike.
type RequestHeaders struct {
	Headers map[string]string
	Cookie  string
}

// Engine drives one DownloadSession end to end: metadata probe, chunk
// planning, the sequential fetch/retry loop or single-shot fallback, and
// the pause/resume/cancel state machine. An Engine is single-use per
// session but may be resumed any number of times while not cancelled.
type Engine struct {
	prober  *Prober
	fetcher *RangeFetcher
	log     *logrus.Entry

	mu       sync.Mutex
	sess     *session
	token    *ControlToken
	progress *ProgressPublisher
	state    *StatePublisher
	fileRef  *FileRefPublisher

	resultCh chan Result
	sizeCh   chan int64
	sizeSent bool

	disposed bool
}

// NewEngine constructs an Engine for url with the given options, applying
// defaults for unset fields.
func NewEngine(url string, opts Options) *Engine {
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = defaultMaxChunks
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	log = log.WithField("component", "engine")

	sess := newSession(url, opts.DestinationPath, opts.MaxChunks, opts.MaxRetries)
	sess.fileName = opts.FileName
	sess.headers = opts.Headers

	return &Engine{
		prober:   NewProber(log),
		fetcher:  NewRangeFetcher(log),
		log:      log,
		sess:     sess,
		token:    NewControlToken(),
		progress: NewProgressPublisher(0),
		state:    NewStatePublisher(),
		fileRef:  NewFileRefPublisher(),
		sizeCh:   make(chan int64, 1),
	}
}

// Progress returns the engine's progress publisher for subscription.
func (e *Engine) Progress() *ProgressPublisher { return e.progress }

// State returns the engine's state publisher for subscription.
func (e *Engine) State() *StatePublisher { return e.state }

// DownloadedFile returns the "last known file reference" publisher.
func (e *Engine) DownloadedFile() *FileRefPublisher { return e.fileRef }

// CanPause mirrors can_buffer: false means pause is permanently a no-op
// for this session.
func (e *Engine) CanPause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.canBuffer
}

// FileSize returns a channel that resolves exactly once, when metadata
// has been probed, to total_bytes.
func (e *Engine) FileSize() <-chan int64 {
	return e.sizeCh
}

// Download starts (or, with resuming=true, continues) the session and
// returns a channel that resolves exactly once with the terminal Result.
func (e *Engine) Download(ctx context.Context, resuming bool) <-chan Result {
	e.mu.Lock()
	ch := make(chan Result, 1)
	e.resultCh = ch
	e.mu.Unlock()

	go e.run(ctx, resuming, ch)
	return ch
}

func (e *Engine) run(ctx context.Context, resuming bool, ch chan Result) {
	e.mu.Lock()
	sess := e.sess
	e.mu.Unlock()

	if !resuming {
		meta, err := e.prober.Probe(ctx, sess.url, sess.headers)
		if err != nil {
			e.log.WithError(err).Warn("metadata probe failed")
			e.settle(ch, Result{Err: err})
			return
		}

		e.mu.Lock()
		sess.totalBytes = meta.TotalBytes
		sess.canBuffer = meta.CanBuffer
		if sess.fileName == "" {
			sess.fileName = meta.Filename
		}
		if sess.destinationPath == "" {
			if sess.fileName == "" {
				e.mu.Unlock()
				e.settle(ch, Result{Err: &FileNameIndeterminateError{URL: sess.url}})
				return
			}
			sess.destinationPath = fsutil.DefaultDirectory()
		}
		if sess.fileName == "" {
			e.mu.Unlock()
			e.settle(ch, Result{Err: &FileNameIndeterminateError{URL: sess.url}})
			return
		}
		e.progress.SetTotal(sess.totalBytes)
		e.mu.Unlock()

		e.sendSizeOnce(sess.totalBytes)

		if sess.totalBytes == 0 {
			e.cancelSession(ch)
			return
		}

		sess.maxChunks = planChunkCount(sess.totalBytes, sess.maxChunks)
		sess.bytesPerChunk = bytesPerChunk(sess.totalBytes, sess.maxChunks)
		sess.currentChunk = 1

		if err := fsutil.EnsureDir(sess.destinationPath); err != nil {
			e.settle(ch, Result{Err: &WriteError{Err: err}})
			return
		}
	}

	e.mu.Lock()
	if sess.phase.Terminal() {
		e.mu.Unlock()
		return
	}
	sess.phase = Downloading
	e.mu.Unlock()
	e.state.Emit(Downloading)

	if !sess.canBuffer {
		e.runSingleShot(ctx, sess, ch)
		return
	}
	e.runChunkLoop(ctx, sess, ch, resuming)
}

func (e *Engine) runChunkLoop(ctx context.Context, sess *session, ch chan Result, resuming bool) {
	tries := 1
	// With nothing written yet there is no offset to resume from, so
	// chunk 1 still starts at byte 0.
	justResumed := resuming && sess.downloadedBytes > 0

	// Any pause or cancel ends this run for good; Resume starts a new one,
	// so this run must not write or report what it is still receiving.
	var stopped atomic.Bool
	obsID := e.token.OnEvent(func(Event) { stopped.Store(true) })
	defer e.token.Unobserve(obsID)
	phaseFn := func() Phase {
		if stopped.Load() {
			return Paused
		}
		return e.currentPhase()
	}

	for sess.currentChunk <= sess.maxChunks && tries != sess.maxRetriesPerChunk {
		e.mu.Lock()
		phase := sess.phase
		e.mu.Unlock()
		if stopped.Load() || phase != Downloading {
			break
		}

		start, end := chunkRange(sess.currentChunk, sess.maxChunks, sess.bytesPerChunk, sess.totalBytes, sess.downloadedBytes, justResumed)

		data, err := e.fetcher.Fetch(ctx, sess.url, start, end, sess.headers, e.progress, phaseFn)
		if err != nil {
			e.log.WithError(err).WithField("chunk", sess.currentChunk).Warn("fetch failed")
			e.failSession(ch, err)
			return
		}

		e.mu.Lock()
		phase = sess.phase
		e.mu.Unlock()
		if stopped.Load() || phase != Downloading {
			break
		}

		if len(data) > 0 {
			if err := e.appendChunk(sess, data); err != nil {
				e.failSession(ch, &WriteError{Err: err})
				return
			}
			sess.downloadedBytes = end
			sess.currentChunk++
			tries = 0
			justResumed = false

			isComplete := sess.currentChunk > sess.maxChunks
			e.fileRef.Publish(Result{OpaqueID: sess.opaqueID, Path: sess.outputPath(), Completed: isComplete})
			if isComplete {
				e.completeSession(ch, sess)
				return
			}
		} else {
			tries++
		}
	}

	e.mu.Lock()
	phase := sess.phase
	e.mu.Unlock()
	if phase == Downloading && !stopped.Load() {
		// Exhausted retries without completing.
		e.cancelSession(ch)
	}
}

func (e *Engine) runSingleShot(ctx context.Context, sess *session, ch chan Result) {
	data, err := e.fetcher.FetchAll(ctx, sess.url, sess.headers, e.progress, e.currentPhase)
	if err != nil {
		e.log.WithError(err).Warn("single-shot fetch failed")
		e.failSession(ch, err)
		return
	}

	e.mu.Lock()
	phase := sess.phase
	e.mu.Unlock()
	if phase != Downloading {
		return
	}

	out := sess.outputPath()
	if fsutil.FileExists(out) {
		_ = os.Remove(out)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		e.failSession(ch, &WriteError{Err: err})
		return
	}

	sess.downloadedBytes = int64(len(data))
	e.completeSession(ch, sess)
}

func (e *Engine) appendChunk(sess *session, data []byte) error {
	flags := os.O_CREATE | os.O_WRONLY
	if sess.currentChunk == 1 {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(sess.outputPath(), flags, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

func (e *Engine) completeSession(ch chan Result, sess *session) {
	e.mu.Lock()
	sess.phase = Completed
	e.mu.Unlock()
	result := Result{OpaqueID: sess.opaqueID, Path: sess.outputPath(), Completed: true}
	e.fileRef.Publish(result)
	e.state.Emit(Completed)
	e.settle(ch, result)
}

// cancelSession latches Cancelled and settles the handle with ErrCancel.
// Used for true cancellation: user-requested cancel, a zero-length probe,
// or chunk retries exhausted without an underlying fault to report.
func (e *Engine) cancelSession(ch chan Result) {
	e.failSession(ch, ErrCancel)
}

// failSession latches Cancelled the same way cancelSession does, but
// settles the handle with err instead of ErrCancel so a FetchError or
// WriteError reaches the caller rather than being swallowed.
func (e *Engine) failSession(ch chan Result, err error) {
	e.mu.Lock()
	alreadyTerminal := e.sess.phase.Terminal()
	if !alreadyTerminal {
		e.sess.phase = Cancelled
	}
	e.mu.Unlock()
	if alreadyTerminal {
		return
	}
	e.token.Cancel()
	e.state.Emit(Cancelled)
	e.settle(ch, Result{Err: err})
}

func (e *Engine) currentPhase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.phase
}

func (e *Engine) settle(ch chan Result, r Result) {
	if r.Err != nil && !isControlFlow(r.Err) {
		e.log.WithError(r.Err).Warn("session settled with error")
	}
	select {
	case ch <- r:
	default:
	}
}

func (e *Engine) sendSizeOnce(total int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sizeSent {
		return
	}
	e.sizeSent = true
	e.sizeCh <- total
}

// Pause drops a Downloading session into Paused. A no-op (with a log
// note) when the session cannot buffer, mirroring the single-shot path's
// non-resumability.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.sess.canBuffer {
		e.mu.Unlock()
		e.log.Info("pause requested on a non-resumable session; ignored")
		return
	}
	if e.sess.phase != Downloading {
		e.mu.Unlock()
		return
	}
	e.sess.phase = Paused
	old := e.resultCh
	fresh := make(chan Result, 1)
	e.resultCh = fresh
	e.mu.Unlock()

	e.token.Pause()
	e.state.Emit(Paused)
	e.settle(old, Result{Err: ErrPause})
}

// Resume re-enters the chunk loop from downloaded_bytes. It fails fast
// with IllegalStateError if the session is not currently Paused.
func (e *Engine) Resume(ctx context.Context) <-chan Result {
	e.mu.Lock()
	if e.sess.phase != Paused {
		e.mu.Unlock()
		ch := make(chan Result, 1)
		ch <- Result{Err: &IllegalStateError{Phase: e.sess.phase}}
		return ch
	}
	e.mu.Unlock()
	return e.Download(ctx, true)
}

// Cancel is idempotent: once latched, further calls observe no change.
func (e *Engine) Cancel() {
	e.mu.Lock()
	ch := e.resultCh
	e.mu.Unlock()
	if ch == nil {
		ch = make(chan Result, 1)
	}
	e.cancelSession(ch)
}

// Dispose closes the progress, state and file-reference publishers; the
// control token is left as it is. Idempotent.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.mu.Unlock()

	e.progress.Dispose()
	e.state.Dispose()
	e.fileRef.Dispose()
}
