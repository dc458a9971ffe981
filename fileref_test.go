package rangedl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileRefPublisherReplaysLatest(t *testing.T) {
	pub := NewFileRefPublisher()
	pub.Publish(Result{Path: "/tmp/a.bin"})

	ch, id := pub.Subscribe()
	defer pub.Unsubscribe(id)

	require.Equal(t, "/tmp/a.bin", (<-ch).Path)
}

func TestFileRefPublisherCurrent(t *testing.T) {
	pub := NewFileRefPublisher()
	_, has := pub.Current()
	require.False(t, has)

	pub.Publish(Result{Path: "/tmp/b.bin", Completed: true})
	r, has := pub.Current()
	require.True(t, has)
	require.True(t, r.Completed)
}
