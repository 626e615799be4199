package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/graph"
)

const graphMaxRows = 15

// RenderGraph produces a terminal-formatted view of the dependency graph:
// a summary header, the module table, layer-to-layer edge counts, cycles,
// and external coupling.
func RenderGraph(g *graph.Graph, projectPath string) string {
	model := g.Model()
	if model.Len() == 0 {
		return "\n  " + dimStyle.Render("No modules found under "+projectPath+".") + "\n\n"
	}

	var b strings.Builder

	renderGraphHeader(&b, g, projectPath)
	renderModuleTable(&b, g)
	renderLayerSection(&b, g)
	renderCyclesSection(&b, g)
	renderExternalSection(&b, g)

	b.WriteString("\n")
	return b.String()
}

func renderGraphHeader(b *strings.Builder, g *graph.Graph, projectPath string) {
	model := g.Model()
	external := 0
	for _, e := range g.AllEdges() {
		if e.External() {
			external++
		}
	}

	title := headerStyle.Render("Dependency Graph")
	rootLine := lipgloss.NewStyle().Bold(true).Foreground(fg).Render(projectPath)
	stats := dimStyle.Render(fmt.Sprintf(
		"%d modules  ·  %d edges  ·  %d cycles  ·  %d external refs",
		model.Len(), g.EdgeCount(), len(g.Cycles()), external))

	b.WriteString(boxStyle.Render(title + "\n\n" + rootLine + "\n" + stats))
	b.WriteString("\n\n")
}

type moduleRow struct {
	path    string
	layer   domain.Layer
	role    domain.Role
	in, out int
}

func renderModuleTable(b *strings.Builder, g *graph.Graph) {
	model := g.Model()
	var rows []moduleRow
	for _, path := range model.Paths() {
		m := model.Module(path)
		out := 0
		for _, e := range g.Edges(path) {
			if !e.External() {
				out++
			}
		}
		rows = append(rows, moduleRow{
			path:  path,
			layer: m.Layer,
			role:  m.Role,
			in:    len(g.InEdges(path)),
			out:   out,
		})
	}

	// Most-depended-on modules first, then alphabetical.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].in != rows[j].in {
			return rows[i].in > rows[j].in
		}
		return rows[i].path < rows[j].path
	})

	hdrLine := fmt.Sprintf("  %-36s %3s %3s  %-14s  %s",
		"Module", "In", "Out", "Layer", "Role")
	b.WriteString(titleStyle.Render(hdrLine) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 68)) + "\n")

	shown := graphMaxRows
	if len(rows) < shown {
		shown = len(rows)
	}

	for _, r := range rows[:shown] {
		line := fmt.Sprintf("  %s %3d %3d  %s  %s",
			dimStyle.Render(truncateOrPad(r.path, 36)),
			r.in, r.out,
			layerLabel(r.layer),
			dimStyle.Render(string(r.role)))
		b.WriteString(line + "\n")
	}

	remaining := len(rows) - shown
	if remaining > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  (%d more modules)\n", remaining)))
	}

	b.WriteString("\n")
}

func layerLabel(layer domain.Layer) string {
	s := padRight(string(layer), 14)
	switch layer {
	case domain.LayerDomain:
		return passStyle.Render(s)
	case domain.LayerUnknown:
		return skipStyle.Render(s)
	default:
		return dimStyle.Render(s)
	}
}

func renderLayerSection(b *strings.Builder, g *graph.Graph) {
	b.WriteString("  " + titleStyle.Render("Layer Edges") + "\n")
	edges := g.LayerEdges()
	if len(edges) == 0 {
		b.WriteString("    " + dimStyle.Render("(none)") + "\n")
	}
	for _, le := range edges {
		b.WriteString("    " + dimStyle.Render(fmt.Sprintf(
			"%s → %s  %d", le.From, le.To, le.Count)) + "\n")
	}
	b.WriteString("\n")
}

func renderCyclesSection(b *strings.Builder, g *graph.Graph) {
	b.WriteString("  " + titleStyle.Render("Cycles") + "\n")
	cycles := g.Cycles()
	if len(cycles) == 0 {
		b.WriteString("    " + passStyle.Render("(none)") + "\n")
	} else {
		for _, cycle := range cycles {
			// Show as a → b → c → a
			parts := make([]string, len(cycle))
			copy(parts, cycle)
			parts = append(parts, cycle[0])
			b.WriteString("    " + failStyle.Render(strings.Join(parts, " → ")) + "\n")
		}
	}
	b.WriteString("\n")
}

func renderExternalSection(b *strings.Builder, g *graph.Graph) {
	counts := map[domain.MarkerClass]int{}
	for _, e := range g.AllEdges() {
		if e.External() {
			counts[e.Target]++
		}
	}

	b.WriteString("  " + titleStyle.Render("External Coupling") + "\n")
	if len(counts) == 0 {
		b.WriteString("    " + passStyle.Render("(none)") + "\n")
		return
	}
	b.WriteString("    " + warnStyle.Render(fmt.Sprintf("framework  %d", counts[domain.MarkerFramework])) + "\n")
	b.WriteString("    " + dimStyle.Render(fmt.Sprintf("standard   %d", counts[domain.MarkerStandard])) + "\n")
	b.WriteString("    " + skipStyle.Render(fmt.Sprintf("unknown    %d", counts[domain.MarkerUnspecified])) + "\n")
}

func truncateOrPad(s string, width int) string {
	if len(s) > width {
		return s[:width-1] + "…"
	}
	return padRight(s, width)
}
