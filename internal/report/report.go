// Package report renders analysis results and organization summaries for
// people (tables and action lines) and for scripts (JSON).
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"

	"desktidy/internal/category"
	"desktidy/internal/domain"
)

const maxListedFiles = 5

// Options controls human-readable output.
type Options struct {
	Colorize bool
}

var categoryColors = map[domain.Category]text.Colors{
	domain.Documents:     {text.FgBlue},
	domain.PDFs:          {text.FgRed},
	domain.Presentations: {text.FgMagenta},
	domain.Spreadsheets:  {text.FgGreen},
	domain.Images:        {text.FgCyan},
	domain.Videos:        {text.FgYellow},
	domain.Audio:         {text.FgRed},
}

var (
	headingColor = text.Colors{text.Bold}
	warnColor    = text.Colors{text.FgYellow}
	errorColor   = text.Colors{text.FgRed}
)

func paint(opts Options, colors text.Colors, s string) string {
	if !opts.Colorize || len(colors) == 0 {
		return s
	}
	return colors.Sprint(s)
}

func heading(w io.Writer, opts Options, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", paint(opts, headingColor, title), strings.Repeat("=", len(title)))
}

// WriteAnalysis prints the scan counts, the per-category table, duplicate
// groups and files that could not be read.
func WriteAnalysis(w io.Writer, analysis domain.AnalysisResult, detection domain.DetectionResult, opts Options) {
	heading(w, opts, "Desktop Analysis")
	fmt.Fprintf(w, "Folder: %s\n", analysis.Root)
	fmt.Fprintf(w, "Total files: %d\n", analysis.Total)
	fmt.Fprintf(w, "Supported files: %d\n", analysis.Supported)
	if analysis.Ignored > 0 {
		fmt.Fprintf(w, "Ignored files: %d\n", analysis.Ignored)
	}

	if present := analysis.PresentCategories(); len(present) > 0 {
		rows := make([][]string, 0, len(present))
		for _, c := range present {
			entries := analysis.ByCategory[c]
			var size int64
			for _, e := range entries {
				size += e.Size
			}
			rows = append(rows, []string{
				paint(opts, categoryColors[c], string(c)),
				strconv.Itoa(len(entries)),
				humanize.Bytes(uint64(size)),
				listNames(entries),
			})
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable(
			[]string{"Category", "Count", "Size", "Files"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		))
	}

	if len(detection.Groups) > 0 {
		heading(w, opts, "Duplicate Files")
		for _, g := range detection.Groups {
			fmt.Fprintf(w, "%s Group %s: %d files (%s each)\n",
				paint(opts, warnColor, "[!]"), g.Key.Short(), len(g.Files), humanize.Bytes(uint64(g.Key.Size)))
			fmt.Fprintf(w, "    keep  %s\n", g.Keeper().Name)
			for _, dup := range g.Duplicates() {
				fmt.Fprintf(w, "    dup   %s\n", dup.Name)
			}
		}
	}

	if len(detection.Failures) > 0 {
		heading(w, opts, "Not Checked For Duplicates")
		for _, f := range detection.Failures {
			fmt.Fprintf(w, "%s %s\n", paint(opts, warnColor, "[warn]"), f.Err)
		}
	}
}

// WriteSummary prints one line per folder created and per action taken (or
// proposed, for dry runs) followed by the totals.
func WriteSummary(w io.Writer, summary domain.OrganizationSummary, opts Options) {
	title := "Actions Taken"
	if summary.DryRun {
		title = "Proposed Actions"
	}
	heading(w, opts, title)

	if len(summary.Actions) == 0 && len(summary.FoldersCreated) == 0 {
		fmt.Fprintln(w, "No files found to organize.")
		return
	}

	for _, folder := range summary.FoldersCreated {
		verb := "Created"
		if summary.DryRun {
			verb = "Would create"
		}
		fmt.Fprintf(w, "%s category folder: %s\n", verb, folder)
	}
	for _, a := range summary.Actions {
		fmt.Fprintln(w, actionLine(a, opts))
	}

	c := summary.Counts()
	fmt.Fprintln(w)
	if summary.DryRun {
		fmt.Fprintf(w, "%d to move, %d skipped, %d failed\n", c.WouldMove, c.Skipped, c.Failed)
		return
	}
	fmt.Fprintf(w, "%d moved, %d skipped, %d failed", c.Moved, c.Skipped, c.Failed)
	if !summary.StartedAt.IsZero() && !summary.FinishedAt.IsZero() {
		fmt.Fprintf(w, " in %s", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}

func actionLine(a domain.Action, opts Options) string {
	name := filepath.Base(a.Source)
	switch a.Kind {
	case domain.ActionMoved, domain.ActionWouldMove:
		verb := "Moved"
		if a.Kind == domain.ActionWouldMove {
			verb = "Would move"
		}
		subject, folder := name, paint(opts, categoryColors[a.Category], a.Category.Folder())
		if a.Duplicate {
			subject, folder = "duplicate "+name, domain.DuplicatesFolder
		}
		line := fmt.Sprintf("%s %s to %s folder", verb, subject, folder)
		if base := filepath.Base(a.Destination); base != name {
			line += " as " + base
		}
		if a.Duplicate && a.KeeperPath != "" {
			line += fmt.Sprintf(" (identical to %s)", filepath.Base(a.KeeperPath))
		}
		return line
	case domain.ActionSkipped:
		return fmt.Sprintf("Skipped %s (%s)", name, a.Reason)
	case domain.ActionFailed:
		return paint(opts, errorColor, fmt.Sprintf("Failed to move %s: %s", name, a.Reason))
	default:
		return fmt.Sprintf("%s: %s", a.Kind, name)
	}
}

func listNames(entries []domain.FileEntry) string {
	names := make([]string, 0, maxListedFiles+1)
	for i, e := range entries {
		if i == maxListedFiles {
			names = append(names, fmt.Sprintf("+%d more", len(entries)-maxListedFiles))
			break
		}
		names = append(names, e.Name)
	}
	return strings.Join(names, ", ")
}

// WriteCategories prints the effective extension table in display order.
func WriteCategories(w io.Writer, resolver *category.Resolver, opts Options) {
	rows := make([][]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		rows = append(rows, []string{
			paint(opts, categoryColors[c], string(c)),
			strings.Join(resolver.Extensions(c), " "),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Category", "Extensions"}, rows, nil))
}
