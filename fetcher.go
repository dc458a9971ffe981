package rangedl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

const fetchSegmentSize = 32 * 1024

// RangeFetcher issues a single ranged GET and streams the body into an
// in-memory buffer, reporting each segment to a ProgressPublisher as it
// arrives. phaseFn lets the caller cooperatively drop segments while the
// session is Paused or Cancelled, without aborting the underlying read.
type RangeFetcher struct {
	client *http.Client
	log    *logrus.Entry
}

// NewRangeFetcher builds a fetcher using a plain client; chunk-level retry
// is the engine's responsibility, not the fetcher's.
func NewRangeFetcher(log *logrus.Entry) *RangeFetcher {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &RangeFetcher{client: &http.Client{}, log: log.WithField("component", "fetcher")}
}

// Fetch issues GET <url> with Range: bytes=<start>-<end> and returns the
// accumulated body. Segments arriving while phaseFn() reports Paused or
// Cancelled are discarded rather than buffered or reported. headers
// carries any user-supplied custom headers and cookie.
func (f *RangeFetcher) Fetch(ctx context.Context, url string, start, end int64, headers RequestHeaders, progress *ProgressPublisher, phaseFn func() Phase) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	applyHeaders(req.Header, headers)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	return f.stream(req, progress, phaseFn)
}

// FetchAll issues an unranged GET, used for the single-shot path when the
// server does not advertise range support.
func (f *RangeFetcher) FetchAll(ctx context.Context, url string, headers RequestHeaders, progress *ProgressPublisher, phaseFn func() Phase) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	applyHeaders(req.Header, headers)
	return f.stream(req, progress, phaseFn)
}

func (f *RangeFetcher) stream(req *http.Request, progress *ProgressPublisher, phaseFn func() Phase) ([]byte, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	segment := make([]byte, fetchSegmentSize)
	for {
		n, readErr := resp.Body.Read(segment)
		if n > 0 {
			if phaseFn == nil || (phaseFn() != Paused && phaseFn() != Cancelled) {
				buf.Write(segment[:n])
				if progress != nil {
					progress.Publish(int64(n))
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, &FetchError{Err: readErr}
		}
	}

	return buf.Bytes(), nil
}
