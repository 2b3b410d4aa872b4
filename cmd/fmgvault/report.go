package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"fmgvault/internal/pipeline"
	"fmgvault/internal/store"
	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

// Semantic colors
var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorError   = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#6b7785")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

func statusStyle(s pipeline.Status) lipgloss.Style {
	switch s {
	case pipeline.StatusSuccess:
		return lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	case pipeline.StatusPartial:
		return lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(colorError)
	}
}

// table renders rows under headers with padded columns.
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func (t *table) add(row ...string) { t.rows = append(t.rows, row) }

func (t *table) render() string {
	if len(t.rows) == 0 {
		return ""
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}
	sep := mutedStyle.Render("|")
	for i, h := range t.headers {
		sb.WriteString(headerStyle.Width(widths[i] + 2).Render(h))
		if i < len(t.headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")
	for _, row := range t.rows {
		for i := range t.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(cellStyle.Width(widths[i] + 2).Render(cell))
			if i < len(t.headers)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// printReport writes the run summary, per-kind counts, failures and warnings.
func printReport(w io.Writer, r *pipeline.Report) {
	name := r.MapName
	if name == "" {
		name = "(unnamed map)"
	}
	fmt.Fprintf(w, "%s %s  %s\n", titleStyle.Render(name),
		statusStyle(r.Status()).Render(strings.ToUpper(string(r.Status()))),
		mutedStyle.Render(fmt.Sprintf("%s input, run %s, %v", r.Format, r.RunID, r.Duration().Round(time.Millisecond))))

	byKind := map[world.Kind]map[pipeline.Outcome]int{}
	for _, d := range r.Documents {
		if byKind[d.Kind] == nil {
			byKind[d.Kind] = map[pipeline.Outcome]int{}
		}
		byKind[d.Kind][d.Outcome]++
	}
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	t := &table{headers: []string{"Kind", "Written", "Unchanged", "Failed"}}
	for _, k := range kinds {
		c := byKind[world.Kind(k)]
		t.add(k, strconv.Itoa(c[pipeline.OutcomeWritten]), strconv.Itoa(c[pipeline.OutcomeUnchanged]),
			strconv.Itoa(c[pipeline.OutcomeFailed]))
	}
	fmt.Fprint(w, t.render())

	if len(r.Stale) > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%d notes were not regenerated and may be stale:", len(r.Stale))))
		for _, p := range r.Stale {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	for _, f := range r.Failures() {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("warning: %s: %v", f.Path, f.Err)))
	}
	for _, msg := range r.Warnings {
		fmt.Fprintln(w, warningStyle.Render("warning: "+msg))
	}
}

// printValidation summarizes a loaded dataset and the notes it would produce.
func printValidation(w io.Writer, ds *world.Dataset, plan *pipeline.Plan) {
	name := ds.Info.MapName
	if name == "" {
		name = "(unnamed map)"
	}
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(name),
		mutedStyle.Render(fmt.Sprintf("%s input, version %s, seed %s", ds.Format, ds.Info.Version, ds.Info.Seed)))

	counts := map[world.Kind]int{}
	for _, task := range plan.Tasks {
		counts[task.Kind]++
	}
	skipped := map[world.Kind]int{}
	for _, s := range plan.Skipped {
		skipped[s.Kind]++
	}
	t := &table{headers: []string{"Kind", "Notes", "Skipped"}}
	for _, k := range vault.EntityKinds {
		if counts[k] == 0 && skipped[k] == 0 {
			continue
		}
		t.add(string(k), strconv.Itoa(counts[k]), strconv.Itoa(skipped[k]))
	}
	fmt.Fprint(w, t.render())

	for _, p := range plan.CollisionPaths() {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("warning: %d notes share %s", len(plan.Collisions[p]), p)))
	}
	for _, msg := range ds.Warnings {
		fmt.Fprintln(w, warningStyle.Render("warning: "+msg))
	}
	fmt.Fprintln(w, statusStyle(pipeline.StatusSuccess).Render("OK"))
}

const timeLayout = "2006-01-02 15:04:05"

// printHistory lists ledger runs, newest first.
func printHistory(w io.Writer, runs []store.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded for this vault.")
		return
	}
	t := &table{
		title:   "Runs",
		headers: []string{"Run", "Started", "Status", "Map", "Written", "Unchanged", "Failed", "Stale", "Duration"},
	}
	for _, r := range runs {
		t.add(
			r.RunID,
			r.Started.Local().Format(timeLayout),
			statusStyle(r.Status).Render(string(r.Status)),
			r.MapName,
			strconv.Itoa(r.Written),
			strconv.Itoa(r.Unchanged),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Stale),
			r.Duration().Round(time.Millisecond).String(),
		)
	}
	fmt.Fprint(w, t.render())
}

func outcomeStyle(o pipeline.Outcome) lipgloss.Style {
	switch o {
	case pipeline.OutcomeWritten:
		return statusStyle(pipeline.StatusSuccess)
	case pipeline.OutcomeFailed:
		return statusStyle(pipeline.StatusFailure)
	default:
		return mutedStyle
	}
}

// printRunDocuments lists every note a run settled, in task order.
func printRunDocuments(w io.Writer, runID string, docs []store.DocumentRecord) {
	if len(docs) == 0 {
		fmt.Fprintf(w, "No notes recorded for run %s.\n", runID)
		return
	}
	t := &table{
		title:   "Run " + runID,
		headers: []string{"Kind", "Path", "Outcome", "Duration", "Error"},
	}
	for _, d := range docs {
		t.add(d.Kind, d.Path, outcomeStyle(d.Outcome).Render(string(d.Outcome)),
			d.Duration.String(), d.Error)
	}
	fmt.Fprint(w, t.render())
}

// printPathHistory lists the recorded writes of one note, newest first.
func printPathHistory(w io.Writer, path string, docs []store.DocumentRecord) {
	if len(docs) == 0 {
		fmt.Fprintf(w, "No writes recorded for %s.\n", path)
		return
	}
	t := &table{
		title:   path,
		headers: []string{"Started", "Run", "Outcome", "Hash", "Error"},
	}
	for _, d := range docs {
		hash := d.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		t.add(d.Started.Local().Format(timeLayout), d.RunID,
			outcomeStyle(d.Outcome).Render(string(d.Outcome)), hash, d.Error)
	}
	fmt.Fprint(w, t.render())
}
