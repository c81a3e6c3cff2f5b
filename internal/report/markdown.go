package report

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/arachne/internal/engine"
	"github.com/nao1215/arachne/internal/stats"
)

// MarkdownWriter outputs summaries as GitHub-flavored Markdown, suitable
// for crawl run logs and dashboards.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *engine.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeRequests(md, summary.Stats)
	w.writeStatusChart(md, summary.Stats)
	w.writeRetries(md, summary.Stats)
	w.writeDrops(md, summary.Stats)
	w.writeAlert(md, summary)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *engine.Summary) {
	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Spider", "`" + summary.Spider + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration.Round(10 * time.Millisecond).String()},
			{"Status", statusText(summary)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeRequests(md *markdown.Markdown, snap stats.Snapshot) {
	md.H2("Requests")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Count"},
		Rows: [][]string{
			{"Requests", strconv.Itoa(snap.Requests)},
			{"Successes", strconv.Itoa(snap.Successes)},
			{"Failures", strconv.Itoa(snap.Failures)},
			{"Given up", strconv.Itoa(snap.GivenUp)},
			{"Items stored", strconv.Itoa(snap.ItemsStored)},
			{"Error records", strconv.Itoa(snap.ErrorRecords)},
			{"Downloaded", formatBytes(snap.BytesDownloaded)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStatusChart(md *markdown.Markdown, snap stats.Snapshot) {
	if len(snap.StatusCodes) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("HTTP Status Codes"),
		piechart.WithShowData(true),
	)

	codes := make([]int, 0, len(snap.StatusCodes))
	for code := range snap.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		chart.LabelAndIntValue(strconv.Itoa(code), uint64(snap.StatusCodes[code]))
	}

	md.H2("Status Codes")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeRetries(md *markdown.Markdown, snap stats.Snapshot) {
	if len(snap.Retries) == 0 {
		return
	}

	md.H2("Retries")
	md.PlainText("")

	rows := make([][]string, 0, len(snap.Retries)+1)
	for _, category := range sortedKeys(snap.Retries) {
		rows = append(rows, []string{category, strconv.Itoa(snap.Retries[category])})
	}
	rows = append(rows, []string{"**total**", "**" + strconv.Itoa(snap.TotalRetries()) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeDrops(md *markdown.Markdown, snap stats.Snapshot) {
	if len(snap.Drops) == 0 {
		return
	}

	md.H2("Dropped Requests")
	md.PlainText("")

	reasons := make([]string, 0, len(snap.Drops))
	for reason := range snap.Drops {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)

	rows := make([][]string, 0, len(reasons))
	for _, reason := range reasons {
		rows = append(rows, []string{reason, strconv.Itoa(snap.Drops[stats.DropReason(reason)])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Reason", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *engine.Summary) {
	switch {
	case summary.Cancelled:
		md.Warningf("Crawl was cancelled before completion; %d request(s) were dropped.",
			summary.Stats.Drops[stats.DropCancelled])
	case summary.Stats.GivenUp > 0:
		md.Importantf("%d request(s) exhausted their retry budget; see the error records for details.",
			summary.Stats.GivenUp)
	default:
		md.Tip("Crawl completed without giving up any request.")
	}
	md.PlainText("")
}
