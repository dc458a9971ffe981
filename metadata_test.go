package rangedl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProberReadsContentLengthAndAcceptRanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prober := NewProber(nil)
	meta, err := prober.Probe(context.Background(), server.URL, RequestHeaders{})
	require.NoError(t, err)
	require.Equal(t, int64(4096), meta.TotalBytes)
	require.True(t, meta.CanBuffer)
	require.Equal(t, "report.pdf", meta.Filename)
}

func TestProberAppliesCustomHeadersAndCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.Equal(t, "session=abc", r.Header.Get("Cookie"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prober := NewProber(nil)
	headers := RequestHeaders{Headers: map[string]string{"X-Api-Key": "secret"}, Cookie: "session=abc"}
	_, err := prober.Probe(context.Background(), server.URL, headers)
	require.NoError(t, err)
}

func TestProberDefaultsWhenHeadersAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prober := NewProber(nil)
	meta, err := prober.Probe(context.Background(), server.URL+"/archive.zip", RequestHeaders{})
	require.NoError(t, err)
	require.Equal(t, int64(0), meta.TotalBytes)
	require.False(t, meta.CanBuffer)
	require.Equal(t, "archive.zip", meta.Filename)
}

func TestProberAcceptRangesMustBeExactlyBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "none")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prober := NewProber(nil)
	meta, err := prober.Probe(context.Background(), server.URL, RequestHeaders{})
	require.NoError(t, err)
	require.False(t, meta.CanBuffer)
}
