// Package ui renders compile results for terminal display.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Problem is a single compiler finding for summary display. It mirrors
// the pipeline's diagnostic shape to keep this package free of compile
// imports.
type Problem struct {
	Severity string // "error", "warning" or anything else the tool said
	File     string
	Line     int
	Message  string
}

// SummaryRenderer formats compile summaries for terminal display.
type SummaryRenderer struct {
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	successStyle lipgloss.Style
	pathStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
}

// NewSummaryRenderer creates a summary renderer with the default styles.
func NewSummaryRenderer() *SummaryRenderer {
	return &SummaryRenderer{
		errorStyle:   lipgloss.NewStyle().Foreground(ColorError),
		warningStyle: lipgloss.NewStyle().Foreground(ColorWarning),
		successStyle: lipgloss.NewStyle().Foreground(ColorSuccess),
		pathStyle:    lipgloss.NewStyle().Foreground(ColorInfo),
		mutedStyle:   lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// RenderSummary generates a formatted failure summary. An empty problem
// list yields an empty string.
func RenderSummary(problems []Problem) string {
	r := NewSummaryRenderer()
	return r.Render(problems)
}

// Render generates the formatted summary string.
func (r *SummaryRenderer) Render(problems []Problem) string {
	if len(problems) == 0 {
		return ""
	}

	errors, warnings := 0, 0
	for _, problem := range problems {
		switch problem.Severity {
		case "error":
			errors++
		case "warning":
			warnings++
		}
	}

	var sb strings.Builder

	headerStyle, symbol := r.errorStyle, SymbolFail
	if errors == 0 && warnings > 0 {
		headerStyle, symbol = r.warningStyle, SymbolWarn
	}

	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s %s", symbol, countLine(errors, warnings))))
	sb.WriteString("\n")

	for _, problem := range problems {
		sb.WriteString("\n")

		location := problem.File
		if problem.Line > 0 {
			location += ":" + strconv.Itoa(problem.Line)
		}
		if location != "" {
			sb.WriteString("  ")
			sb.WriteString(r.pathStyle.Render(location))
			sb.WriteString("\n")
		}

		if problem.Message != "" {
			style := r.mutedStyle
			if problem.Severity == "warning" {
				style = r.warningStyle
			}

			for _, line := range strings.Split(problem.Message, "\n") {
				sb.WriteString("    ")
				sb.WriteString(style.Render(line))
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// RenderSuccess generates the styled success notice.
func RenderSuccess() string {
	r := NewSummaryRenderer()
	return r.successStyle.Render(SymbolSuccess + " compilation finished")
}

func countLine(errors, warnings int) string {
	parts := make([]string, 0, 2)

	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", errors, plural("error", errors)))
	}

	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", warnings, plural("warning", warnings)))
	}

	if len(parts) == 0 {
		return "compilation failed"
	}

	return strings.Join(parts, ", ")
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}

	return word + "s"
}
