package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/arachne/internal/engine"
	"github.com/nao1215/arachne/internal/stats"
)

// SimpleWriter outputs a human-readable text summary for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *engine.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeRequests(&sb, summary.Stats)
	w.writeItems(&sb, summary.Stats)
	w.writeRetries(&sb, summary.Stats)
	w.writeDrops(&sb, summary.Stats)
	w.writeStatusCodes(&sb, summary.Stats)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *engine.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Spider:     %s\n", summary.Spider)
	fmt.Fprintf(sb, "Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", summary.Duration.Round(10*time.Millisecond))
	fmt.Fprintf(sb, "Status:     %s\n", statusText(summary))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRequests(sb *strings.Builder, snap stats.Snapshot) {
	w.section(sb, "REQUESTS")
	fmt.Fprintf(sb, "  Requests:   %d\n", snap.Requests)
	fmt.Fprintf(sb, "  Successes:  %d\n", snap.Successes)
	fmt.Fprintf(sb, "  Failures:   %d\n", snap.Failures)
	fmt.Fprintf(sb, "  Given up:   %d\n", snap.GivenUp)
	fmt.Fprintf(sb, "  Downloaded: %s\n", formatBytes(snap.BytesDownloaded))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeItems(sb *strings.Builder, snap stats.Snapshot) {
	w.section(sb, "ITEMS")
	fmt.Fprintf(sb, "  Stored:         %d\n", snap.ItemsStored)
	fmt.Fprintf(sb, "  Error records:  %d\n", snap.ErrorRecords)
	if snap.StorageErrors > 0 || w.showEmpty {
		fmt.Fprintf(sb, "  Storage errors: %d\n", snap.StorageErrors)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRetries(sb *strings.Builder, snap stats.Snapshot) {
	if len(snap.Retries) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "RETRIES")
	if len(snap.Retries) == 0 {
		sb.WriteString("  No retries\n\n")
		return
	}
	for _, category := range sortedKeys(snap.Retries) {
		fmt.Fprintf(sb, "  %-16s %d\n", category+":", snap.Retries[category])
	}
	fmt.Fprintf(sb, "  %-16s %d\n", "total:", snap.TotalRetries())
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDrops(sb *strings.Builder, snap stats.Snapshot) {
	if len(snap.Drops) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "DROPPED REQUESTS")
	if len(snap.Drops) == 0 {
		sb.WriteString("  No drops\n\n")
		return
	}
	reasons := make([]string, 0, len(snap.Drops))
	for reason := range snap.Drops {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(sb, "  %-16s %d\n", reason+":", snap.Drops[stats.DropReason(reason)])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStatusCodes(sb *strings.Builder, snap stats.Snapshot) {
	if len(snap.StatusCodes) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "HTTP STATUS CODES")
	if len(snap.StatusCodes) == 0 {
		sb.WriteString("  No responses\n\n")
		return
	}
	codes := make([]int, 0, len(snap.StatusCodes))
	for code := range snap.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(sb, "  %d: %d\n", code, snap.StatusCodes[code])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
