package rangedl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsControlFlowRecognizesPauseAndCancel(t *testing.T) {
	require.True(t, isControlFlow(ErrPause))
	require.True(t, isControlFlow(ErrCancel))
	require.False(t, isControlFlow(errors.New("boom")))
}

func TestMetadataErrorUnwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := &MetadataError{URL: "http://example.invalid", Err: inner}
	require.ErrorIs(t, err, inner)
}

func TestFetchErrorUnwraps(t *testing.T) {
	inner := errors.New("read: connection reset")
	err := &FetchError{ChunkIndex: 3, Err: inner}
	require.ErrorIs(t, err, inner)
}
