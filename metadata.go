package rangedl

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// Metadata is the result of a probe: what the engine needs to know about
// the remote resource before it can plan chunks.
type Metadata struct {
	TotalBytes int64
	CanBuffer  bool
	Filename   string
}

// Prober issues a HEAD request and derives total size and range
// capability. Transport-level retries (refused connections, timeouts) are
// handled by the underlying retrying client; a HEAD that completes but
// carries unusable headers is not retried here — total_bytes simply
// defaults to 0, as spec'd.
type Prober struct {
	client *retryablehttp.Client
	log    *logrus.Entry
}

// NewProber builds a Prober. log may be nil, in which case a disabled
// no-op entry is used.
func NewProber(log *logrus.Entry) *Prober {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil // we log through our own tagged entry, not theirs

	if log == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		log = logrus.NewEntry(logger)
	}

	return &Prober{client: client, log: log.WithField("component", "prober")}
}

// Probe issues HEAD <url> and returns total size and range capability.
// Failure is wrapped in a *MetadataError. headers carries any user-supplied
// custom headers and cookie, applied to the probe request the same way
// they are applied to every subsequent fetch.
func (p *Prober) Probe(ctx context.Context, rawURL string, headers RequestHeaders) (Metadata, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Metadata{}, &MetadataError{URL: rawURL, Err: err}
	}
	applyHeaders(req.Header, headers)

	resp, err := p.client.Do(req)
	if err != nil {
		return Metadata{}, &MetadataError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	total := parseContentLength(resp.Header.Get("Content-Length"))
	canBuffer := resp.Header.Get("Accept-Ranges") == "bytes"
	filename := deriveFilename(resp, rawURL)

	p.log.WithFields(logrus.Fields{
		"url":         rawURL,
		"total_bytes": total,
		"can_buffer":  canBuffer,
		"filename":    filename,
	}).Debug("probed metadata")

	return Metadata{TotalBytes: total, CanBuffer: canBuffer, Filename: filename}, nil
}

// applyHeaders sets each custom header and, if present, the Cookie header
// on h. Grounded on the teacher's header/cookie loop in
// downloadSingleChunk, generalized to a shared helper for the probe and
// every fetch request.
func applyHeaders(h http.Header, headers RequestHeaders) {
	for key, value := range headers.Headers {
		h.Set(key, value)
	}
	if headers.Cookie != "" {
		h.Set("Cookie", headers.Cookie)
	}
}

func parseContentLength(raw string) int64 {
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// deriveFilename prefers Content-Disposition, then falls back to the
// substring of the resolved URL after the last slash.
func deriveFilename(resp *http.Response, rawURL string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name, ok := params["filename"]; ok && name != "" {
				return name
			}
			if name, ok := params["filename*"]; ok {
				if after, found := strings.CutPrefix(name, "UTF-8''"); found {
					if decoded, err := url.QueryUnescape(after); err == nil {
						return decoded
					}
				}
			}
		}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	if parsed, err := url.Parse(finalURL); err == nil {
		p := parsed.Path
		return p[strings.LastIndex(p, "/")+1:]
	}
	return ""
}
