package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/depcheck/pkg/audit"
	"github.com/matzehuels/depcheck/pkg/pipeline"
)

// emptyCell marks a missing installed or latest version in the table.
const emptyCell = "-"

// =============================================================================
// Status Presentation
// =============================================================================

// statusLabel maps a status to its display text.
func statusLabel(s audit.Status) string {
	switch s {
	case audit.StatusUpToDate:
		return iconSuccess + " Up-to-date"
	case audit.StatusOutdated:
		return iconError + " Outdated"
	case audit.StatusNotInstalled:
		return "Not Installed"
	case audit.StatusError:
		return "Error"
	}
	return s.String()
}

// statusStyle maps a status to its color.
func statusStyle(s audit.Status) lipgloss.Style {
	switch s {
	case audit.StatusUpToDate:
		return StyleSuccess
	case audit.StatusOutdated:
		return StyleWarning
	case audit.StatusNotInstalled:
		return StyleDim
	case audit.StatusError:
		return StyleError
	}
	return StyleValue
}

// =============================================================================
// Table Output
// =============================================================================

// renderTable writes the human-readable audit table. The Unused column is
// shown only when the unused check ran.
func renderTable(w io.Writer, records []audit.Record, showUnused bool) {
	headers := []string{"Package", "Installed", "Latest", "Status"}
	if showUnused {
		headers = append(headers, "Unused")
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{r.Name, cell(r.Installed), cell(r.Latest), statusLabel(r.Status)}
		if showUnused {
			row = append(row, unusedCell(r.Unused))
		}
		rows = append(rows, row)
	}

	const statusCol = 3
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == statusCol && row >= 0 && row < len(records) {
				return statusStyle(records[row].Status).Padding(0, 1)
			}
			return styleCell
		})

	fmt.Fprintln(w, t.Render())
}

// renderErrors lists the registry failures below the table.
func renderErrors(w io.Writer, records []audit.Record) {
	for _, r := range records {
		if r.Status == audit.StatusError && r.Error != "" {
			fmt.Fprintf(w, "  %s %s %s\n", styleIconError.Render(iconError), StyleValue.Render(r.Name), StyleDim.Render(r.Error))
		}
	}
}

// renderSummary writes the per-status counts and the unused list.
func renderSummary(w io.Writer, s audit.Summary, showUnused bool) {
	var parts []string
	for _, st := range audit.Statuses() {
		if n := s.Count(st); n > 0 {
			parts = append(parts, statusStyle(st).Render(fmt.Sprintf("%d %s", n, st)))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no packages")
	}
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render(fmt.Sprintf("%d checked:", s.Total)), strings.Join(parts, StyleDim.Render(" · ")))

	if !showUnused {
		return
	}
	if len(s.Unused) == 0 {
		fmt.Fprintf(w, "%s No unused dependencies found\n", styleIconSuccess.Render(iconSuccess))
		return
	}
	fmt.Fprintf(w, "%s %s\n", styleIconWarning.Render(iconWarning), StyleWarning.Render(fmt.Sprintf("%d unused dependencies:", len(s.Unused))))
	for _, name := range s.Unused {
		fmt.Fprintf(w, "  %s %s\n", StyleDim.Render(iconArrow), name)
	}
}

// reportSummary counts the records. With a usage report the unused list
// covers every runtime dependency, not only the audited targets.
func reportSummary(result *pipeline.Result) audit.Summary {
	s := audit.Summarize(result.Records)
	if result.Usage != nil {
		s.Unused = result.Usage.Unused
	}
	return s
}

func cell(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}

func unusedCell(u *bool) string {
	switch {
	case u == nil:
		return emptyCell
	case *u:
		return "yes"
	}
	return "no"
}

// =============================================================================
// JSON Output
// =============================================================================

// writeJSON writes the records as an indented JSON array. An empty run
// encodes as [] rather than null.
func writeJSON(w io.Writer, records []audit.Record) error {
	if records == nil {
		records = []audit.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
