package report

import (
	"io"

	"github.com/nao1215/arachne/internal/engine"
)

// Writer renders one crawl summary to its destination.
type Writer interface {
	// Write outputs the summary. It returns the number of bytes written
	// and any error encountered.
	Write(summary *engine.Summary) (int, error)
}

// MultiWriter writes a summary to several Writers, such as the terminal
// and a file. It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers and returns the
// total bytes written.
func (m *MultiWriter) Write(summary *engine.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by the concrete writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how the crawl ended.
func statusText(summary *engine.Summary) string {
	switch {
	case summary.Cancelled:
		return "cancelled (partial results)"
	case summary.Stopped:
		return "stopped by spider"
	default:
		return "complete"
	}
}
