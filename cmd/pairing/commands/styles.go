// SPDX-License-Identifier: MIT

package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/katalvlaran/pairing/analysis"
	"github.com/katalvlaran/pairing/pipeline"
	"github.com/katalvlaran/pairing/person"
	"github.com/katalvlaran/pairing/store"
)

// Theme is the CLI color scheme.
type Theme struct {
	Primary lipgloss.Color
	Warn    lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is used by every command.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00afff"),
	Warn:    lipgloss.Color("#ff5f5f"),
	Dim:     lipgloss.Color("#6e7681"),
}

type styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Warn  lipgloss.Style
	Dim   lipgloss.Style
	Box   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Bold(true).Width(16),
		Warn:  lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		Dim:   lipgloss.NewStyle().Foreground(t.Dim),
		Box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
	}
}

func (s styles) row(label string, format string, args ...any) string {
	return s.Label.Render(label) + fmt.Sprintf(format, args...)
}

// renderResult prints the run summary, the per-category satisfaction table
// and, when showPairs is set, every final pair.
func renderResult(w io.Writer, res *pipeline.Result, showPairs bool) {
	s := newStyles(DefaultTheme)

	stab := s.row("blocking pairs", "%d (%.2f%% of pairs, %.2f%% of people)",
		res.Stability.BlockingPairs, res.Stability.PairPercent, res.Stability.IndividualsPercent)
	if !res.Stability.Stable() {
		stab = s.Warn.Render(stab)
	}
	lines := []string{
		s.Title.Render("pairing " + string(res.Algorithm)),
		s.row("batch", "%s", res.BatchID),
		s.row("model", "%s", res.Model),
		s.row("pools", "straight men %d, straight women %d, gay %d, lesbian %d",
			res.PoolSizes[person.CategoryStraightMen], res.PoolSizes[person.CategoryStraightWomen],
			res.PoolSizes[person.CategoryGayMen], res.PoolSizes[person.CategoryLesbianWomen]),
		s.row("greedy pairs", "%d", len(res.Greedy.Matches)),
		s.row("matches", "%d", len(res.Matches)),
		s.row("unmatched", "%d", len(res.Unmatched)),
		s.row("total cost", "%.4g", res.TotalCost),
		stab,
		s.row("mean rank", "%.2f (median %.1f, mode %d)", res.Satisfaction.Mean, res.Satisfaction.Median, res.Satisfaction.Mode),
		s.row(fmt.Sprintf("top %d", res.Satisfaction.TopK), "%.1f%%", res.Satisfaction.TopKPercent),
		s.row(fmt.Sprintf("bottom %d", res.Satisfaction.BottomK), "%.1f%%", res.Satisfaction.BottomKPercent),
	}
	if res.Conflicts > 0 {
		lines = append(lines, s.Warn.Render(s.row("conflicts", "%d", res.Conflicts)))
	}
	lines = append(lines, s.Dim.Render(fmt.Sprintf("took %s", res.Duration.Round(time.Microsecond))))
	fmt.Fprintln(w, s.Box.Render(strings.Join(lines, "\n")))

	if len(res.ByCategory) > 0 {
		fmt.Fprintln(w, renderCategories(s, res.ByCategory))
	}
	if showPairs {
		for _, m := range res.Matches {
			fmt.Fprintf(w, "%s\t%s\t%g\n", m.A, m.B, m.Cost)
		}
	}
}

func renderCategories(s styles, by map[string]analysis.Summary) string {
	names := make([]string, 0, len(by))
	for name := range by {
		names = append(names, name)
	}
	sort.Strings(names)

	head := lipgloss.NewStyle().Bold(true).Width(16)
	cell := lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	rows := []string{head.Render("category") + cell.Render("n") + cell.Render("mean") + cell.Render("top%") + cell.Render("bottom%")}
	for _, name := range names {
		sum := by[name]
		rows = append(rows, s.Label.Render(name)+
			cell.Render(fmt.Sprint(sum.N))+
			cell.Render(fmt.Sprintf("%.2f", sum.Mean))+
			cell.Render(fmt.Sprintf("%.1f", sum.TopKPercent))+
			cell.Render(fmt.Sprintf("%.1f", sum.BottomKPercent)))
	}

	return strings.Join(rows, "\n")
}

func renderRecords(w io.Writer, recs []store.Record) {
	s := newStyles(DefaultTheme)
	if len(recs) == 0 {
		fmt.Fprintln(w, s.Dim.Render("no records"))
		return
	}
	for _, r := range recs {
		status := string(r.Status)
		if r.Status == store.StatusRejected {
			status = s.Warn.Render(status)
		}
		fmt.Fprintf(w, "%s  %s  %-10s %-10s %8g  %s  %s\n",
			s.Dim.Render(r.CreatedAt.Format("2006-01-02 15:04")), r.BatchID, r.A, r.B, r.Cost, r.Algorithm, status)
	}
}
