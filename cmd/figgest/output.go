package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/figgest/internal/question"
	"github.com/dgallion1/figgest/internal/rebuild"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted labels
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for the summary box
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

func printExtractSummary(w io.Writer, recs []question.Record, path string) {
	var failed, figures int
	types := map[string]int{}
	for _, r := range recs {
		if r.Error != "" {
			failed++
			continue
		}
		figures += len(r.Figures)
		for _, f := range r.Figures {
			types[f.Kind.String()]++
		}
	}

	status := successStyle.Render("OK")
	if failed > 0 {
		status = errorStyle.Render(fmt.Sprintf("%d FAILED", failed))
	}
	lines := []string{
		titleStyle.Render("Extraction complete"),
		fmt.Sprintf("%s %d  %s %d  %s",
			dimStyle.Render("Questions:"), len(recs),
			dimStyle.Render("Figures:"), figures,
			status),
	}
	lines = append(lines, countLines(types)...)
	lines = append(lines, fmt.Sprintf("%s %s", dimStyle.Render("Output:"), path))
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func printRebuildSummary(w io.Writer, mode rebuild.Mode, qs []rebuild.Question, path string) {
	var failed int
	for _, q := range qs {
		if q.Error != "" {
			failed++
		}
	}
	status := successStyle.Render("OK")
	if failed > 0 {
		status = errorStyle.Render(fmt.Sprintf("%d FAILED", failed))
	}
	lines := []string{
		fmt.Sprintf("%s %s", titleStyle.Render("Rebuilt"), string(mode)),
		fmt.Sprintf("%s %d  %s", dimStyle.Render("Questions:"), len(qs), status),
		dimStyle.Render("Questions per figure type:"),
	}
	lines = append(lines, countLines(rebuild.TypeCounts(qs))...)
	lines = append(lines, fmt.Sprintf("%s %s", dimStyle.Render("Output:"), path))
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func countLines(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("  %-16s %d", k, counts[k]))
	}
	return out
}
