package rangedl

// defaultMaxChunks is the caller-overridable ceiling on chunk count.
const defaultMaxChunks = 300

// planChunkCount derives max_chunks from totalBytes and the caller's cap.
// A totalBytes of 0 signals an unplannable download; the caller is
// expected to cancel in that case.
func planChunkCount(totalBytes int64, callerMaxChunks int) int {
	if totalBytes == 0 {
		return 0
	}
	if callerMaxChunks <= 0 {
		callerMaxChunks = defaultMaxChunks
	}

	var base int
	switch {
	case totalBytes >= tb:
		base = 1000
	case totalBytes >= gb:
		base = 100
	case totalBytes >= mb:
		base = 10
	default:
		return 1
	}

	chunks := base / 3
	if chunks > callerMaxChunks {
		chunks = callerMaxChunks
	}
	if chunks < 1 {
		chunks = 1
	}
	return chunks
}

// bytesPerChunk computes total_bytes / max_chunks (integer division).
func bytesPerChunk(totalBytes int64, maxChunks int) int64 {
	if maxChunks <= 0 {
		return totalBytes
	}
	return totalBytes / int64(maxChunks)
}

// chunkRange returns the byte range for 1-based chunk index k out of
// maxChunks. justResumed overrides start to downloadedBytes+1 for exactly
// the first chunk attempted after a resume; every subsequent call in the
// same loop must pass justResumed=false. The last chunk's end is pinned
// to totalBytes regardless of the bytesPerChunk arithmetic, so whatever
// remainder integer division truncated away is still captured.
func chunkRange(k, maxChunks int, bytesPerChunk, totalBytes, downloadedBytes int64, justResumed bool) (start, end int64) {
	if justResumed {
		start = downloadedBytes + 1
	} else if k == 1 {
		start = 0
	} else {
		start = int64(k-1)*bytesPerChunk + 1
	}

	if k >= maxChunks {
		end = totalBytes
		return start, end
	}

	end = int64(k) * bytesPerChunk
	if end > totalBytes {
		end = totalBytes
	}
	return start, end
}
