// package formatter renders sync outcomes for the terminal and exports them to CSV
package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/favsync/internal/tasks"
)

// TextReporter implements [tasks.Reporter] by writing one styled line per outcome and a summary block.
type TextReporter struct {
	w       io.Writer
	palette *Palette
	quiet   bool
}

// NewTextReporter creates a reporter writing to w (default [os.Stdout]).
// A quiet reporter only prints outcomes that need attention.
func NewTextReporter(w io.Writer, quiet bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, palette: DefaultPalette, quiet: quiet}
}

// ReportOutcome writes a single outcome line.
func (r *TextReporter) ReportOutcome(o tasks.SyncOutcome) {
	if r.quiet && o.Succeeded() {
		return
	}
	fmt.Fprintln(r.w, r.outcomeLine(o))
}

func (r *TextReporter) outcomeLine(o tasks.SyncOutcome) string {
	track := o.Track.String()
	switch o.Kind {
	case tasks.Favorited:
		label := "favorited"
		if o.DryRun {
			label = "would favorite"
		}
		return fmt.Sprintf("%s %s %s", r.palette.OK("✓"), track, r.palette.Help(fmt.Sprintf("%s %s (%.2f)", label, o.CandidateID, o.Score)))
	case tasks.AlreadyFavorited:
		return fmt.Sprintf("%s %s %s", r.palette.OK("="), track, r.palette.Help("already favorited"))
	case tasks.NotFound:
		return fmt.Sprintf("%s %s %s", r.palette.Warn("?"), track, r.palette.Help("not found"))
	case tasks.NoGoodMatch:
		return fmt.Sprintf("%s %s %s", r.palette.Warn("~"), track,
			r.palette.Help(fmt.Sprintf("no good match, best %q by %s (%.2f)", o.CandidateTitle, o.CandidateArtist, o.BestScore())))
	case tasks.FailedToAdd:
		return fmt.Sprintf("%s %s %s", r.palette.Err("✗"), track, r.palette.Err(fmt.Sprint(o.Err)))
	default:
		return fmt.Sprintf("  %s %s", track, o.Kind)
	}
}

// ReportSummary writes the run totals and success rate.
func (r *TextReporter) ReportSummary(s tasks.SyncSummary) {
	fmt.Fprintln(r.w, FormatSummary(s, r.palette))
}

// FormatSummary renders s as a multi-line block.
func FormatSummary(s tasks.SyncSummary, p *Palette) string {
	if p == nil {
		p = DefaultPalette
	}

	var b strings.Builder
	b.WriteString("\n")
	title := "Sync Summary"
	if s.Interrupted {
		title += " (interrupted)"
	}
	b.WriteString(p.Title(title) + "\n")

	favorited := fmt.Sprintf("%d", s.Favorited)
	if s.DryRunFavorited > 0 {
		favorited += fmt.Sprintf(" (%d dry run)", s.DryRunFavorited)
	}

	rows := [][2]string{
		{"Total tracks", fmt.Sprintf("%d", s.Total)},
		{"Favorited", favorited},
		{"Already favorited", fmt.Sprintf("%d", s.AlreadyFavorited)},
		{"Not found", fmt.Sprintf("%d", s.NotFound)},
		{"No good match", fmt.Sprintf("%d", s.NoGoodMatch)},
		{"Failed", fmt.Sprintf("%d", s.FailedToAdd)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-18s %s\n", row[0]+":", row[1])
	}

	rate := fmt.Sprintf("%.1f%%", s.SuccessRate()*100)
	switch {
	case s.FailedToAdd > 0:
		rate = p.Err(rate)
	case s.Unmatched() > 0:
		rate = p.Warn(rate)
	default:
		rate = p.OK(rate)
	}
	fmt.Fprintf(&b, "  %-18s %s", "Success rate:", rate)

	return b.String()
}
