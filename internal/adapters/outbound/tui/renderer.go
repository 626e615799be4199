package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/archlint/archlint/internal/domain"
)

// ── Claude-inspired warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	codeStyle     = lipgloss.NewStyle().Foreground(info)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport formats a validation report for the terminal: a verdict box,
// violations grouped by module, then diagnostics.
func RenderReport(report *domain.Report, projectPath string) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("archlint")
	subtitle := dimStyle.Render("Architecture Conformance")
	verdict := passStyle.Bold(true).Render("PASSED")
	if !report.Passed {
		verdict = failStyle.Bold(true).Render("FAILED")
	}
	stats := dimStyle.Render(fmt.Sprintf("%d errors  ·  %d warnings", report.ErrorCount, report.WarningCount))
	if report.CommitHash != "" {
		hash := report.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		stats += dimStyle.Render("  ·  ") + faintStyle.Render(hash)
	}

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + verdict + "\n" + stats))
	b.WriteString("\n\n")

	// ── Violations grouped by module ──
	if len(report.Violations) == 0 {
		b.WriteString("  " + passStyle.Render("No violations found.") + "\n")
	} else {
		for _, group := range groupByModule(report.Violations) {
			b.WriteString("  " + fileStyle.Render(moduleLabel(group.path)) + "\n")
			for _, v := range group.violations {
				renderViolation(&b, v)
			}
			b.WriteString("\n")
		}
	}

	// ── Diagnostics ──
	if len(report.Diagnostics) > 0 {
		b.WriteString("  " + separatorLine + "\n\n")
		b.WriteString("  " + titleStyle.Render("Diagnostics") + "\n\n")
		for _, d := range report.Diagnostics {
			renderDiagnostic(&b, d)
		}
	}

	b.WriteString("\n")
	return b.String()
}

type moduleGroup struct {
	path       string
	violations []domain.Violation
}

// groupByModule buckets violations under their module, module paths in
// lexicographic order. Within a module the incoming canonical order holds.
func groupByModule(vs []domain.Violation) []moduleGroup {
	index := make(map[string]int)
	var groups []moduleGroup
	for _, v := range vs {
		i, ok := index[v.ModulePath]
		if !ok {
			i = len(groups)
			index[v.ModulePath] = i
			groups = append(groups, moduleGroup{path: v.ModulePath})
		}
		groups[i].violations = append(groups[i].violations, v)
	}
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && groups[j].path < groups[j-1].path; j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
	return groups
}

func moduleLabel(path string) string {
	if path == "" {
		return "—"
	}
	return path
}

func renderViolation(b *strings.Builder, v domain.Violation) {
	tag := severityTag(v.Severity)
	msg := dimStyle.Render(v.Message)
	code := codeStyle.Render(v.Code)
	if v.Locator != "" {
		fmt.Fprintf(b, "    %s %s  %s\n", tag, faintStyle.Render(v.Locator), code)
		fmt.Fprintf(b, "         %s\n", msg)
	} else {
		fmt.Fprintf(b, "    %s %s\n", tag, code)
		fmt.Fprintf(b, "         %s\n", msg)
	}
}

func renderDiagnostic(b *strings.Builder, d domain.Diagnostic) {
	kind := skipStyle.Render(padRight(string(d.Kind), 14))
	if d.Path != "" {
		fmt.Fprintf(b, "    %s %s\n", kind, fileStyle.Render(d.Path))
		fmt.Fprintf(b, "                   %s\n", dimStyle.Render(d.Message))
	} else {
		fmt.Fprintf(b, "    %s %s\n", kind, dimStyle.Render(d.Message))
	}
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
