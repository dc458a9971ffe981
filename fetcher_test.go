package rangedl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeFetcherHonorsRangeHeader(t *testing.T) {
	content := []byte("0123456789")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "bytes=2-5", r.Header.Get("Range"))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(content[2:6])
	}))
	defer server.Close()

	fetcher := NewRangeFetcher(nil)
	progress := NewProgressPublisher(10)

	data, err := fetcher.Fetch(context.Background(), server.URL, 2, 5, RequestHeaders{}, progress, func() Phase { return Downloading })
	require.NoError(t, err)
	require.Equal(t, content[2:6], data)
	require.Equal(t, int64(4), progress.Downloaded())
}

func TestRangeFetcherAppliesCustomHeadersAndCookie(t *testing.T) {
	content := []byte("0123456789")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.Equal(t, "session=abc", r.Header.Get("Cookie"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}))
	defer server.Close()

	fetcher := NewRangeFetcher(nil)
	progress := NewProgressPublisher(int64(len(content)))
	headers := RequestHeaders{Headers: map[string]string{"X-Api-Key": "secret"}, Cookie: "session=abc"}

	_, err := fetcher.Fetch(context.Background(), server.URL, 0, int64(len(content)), headers, progress, func() Phase { return Downloading })
	require.NoError(t, err)
}

func TestRangeFetcherDropsSegmentsWhenNotDownloading(t *testing.T) {
	content := []byte("some bytes to stream through the fetcher")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}))
	defer server.Close()

	fetcher := NewRangeFetcher(nil)
	progress := NewProgressPublisher(int64(len(content)))

	data, err := fetcher.Fetch(context.Background(), server.URL, 0, int64(len(content)), RequestHeaders{}, progress, func() Phase { return Paused })
	require.NoError(t, err)
	require.Empty(t, data)
	require.Equal(t, int64(0), progress.Downloaded())
}

func TestRangeFetcherFetchAllIssuesUnrangedGet(t *testing.T) {
	content := []byte("entire body, no range header expected")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Range"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}))
	defer server.Close()

	fetcher := NewRangeFetcher(nil)
	data, err := fetcher.FetchAll(context.Background(), server.URL, RequestHeaders{}, nil, func() Phase { return Downloading })
	require.NoError(t, err)
	require.Equal(t, content, data)
}
