package download

import "io"

// ProgressWriter wraps a writer to track download progress.
//
// OnUpdate receives the bytes written so far and the expected total after
// every Write.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer
	// Total is the expected total bytes.
	Total int64
	// Written is the current number of bytes written.
	Written int64
	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Percent maps written bytes onto 0..100. An empty expected total counts as
// complete, and overshooting stays at 100.
func Percent(written, total int64) int {
	if total <= 0 {
		return 100
	}
	if written >= total {
		return 100
	}
	return int(written * 100 / total)
}
