package rangedl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanChunkCountBoundaries(t *testing.T) {
	require.Equal(t, 0, planChunkCount(0, 300))
	require.Equal(t, 1, planChunkCount(500, 300))
	require.Equal(t, 1, planChunkCount(10*kb, 300))
	require.Equal(t, 3, planChunkCount(5*mb, 300))
	require.Equal(t, 33, planChunkCount(2*int64(gb), 300))
}

func TestPlanChunkCountClampedByCallerCap(t *testing.T) {
	require.Equal(t, 5, planChunkCount(2*int64(gb), 5))
}

func TestChunkRangeFirstChunkStartsAtZero(t *testing.T) {
	start, end := chunkRange(1, 10, 100, 1000, 0, false)
	require.Equal(t, int64(0), start)
	require.Equal(t, int64(100), end)
}

func TestChunkRangeMiddleChunkOffByOne(t *testing.T) {
	start, end := chunkRange(2, 10, 100, 1000, 100, false)
	require.Equal(t, int64(101), start)
	require.Equal(t, int64(200), end)
}

func TestChunkRangeFinalChunkClampedToTotal(t *testing.T) {
	start, end := chunkRange(3, 3, 333, 1000, 666, false)
	require.Equal(t, int64(667), start)
	require.Equal(t, int64(1000), end)
}

func TestChunkRangeResumeOverridesStart(t *testing.T) {
	start, end := chunkRange(2, 10, 100, 1000, 150, true)
	require.Equal(t, int64(151), start)
	require.Equal(t, int64(200), end)
}
