package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Embers-of-the-Fire/evemt/internal/pack"
)

// Hit is one search result row.
type Hit struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// RenderPacks writes one row per pack. The active pack is marked with '*'.
func RenderPacks(w io.Writer, packs []*pack.Descriptor, activeID, lang string, styles Styles) {
	if len(packs) == 0 {
		_, _ = fmt.Fprintln(w, styles.Dim.Render("No packs imported."))
		return
	}

	rows := [][]string{{"", "ID", "NAME", "GAME", "CREATED", "DIRECTORY"}}
	for _, d := range packs {
		marker := ""
		if d.ID == activeID {
			marker = "*"
		}
		game := d.Game.Version
		if d.Game.Build != "" {
			game += " (" + d.Game.Build + ")"
		}
		created := ""
		if !d.Created.IsZero() {
			created = d.Created.Format("2006-01-02")
		}
		rows = append(rows, []string{marker, d.ID, d.DisplayName(lang), game, created, dirBase(d.Root)})
	}

	writeTable(w, rows, func(row int, line string) string {
		switch {
		case row == 0:
			return styles.Header.Render(line)
		case packs[row-1].ID == activeID:
			return styles.Active.Render(line)
		default:
			return line
		}
	})
}

// RenderHits writes one row per search result.
func RenderHits(w io.Writer, hits []Hit, styles Styles) {
	if len(hits) == 0 {
		_, _ = fmt.Fprintln(w, styles.Dim.Render("No matches."))
		return
	}
	rows := [][]string{{"ID", "NAME"}}
	for _, h := range hits {
		rows = append(rows, []string{fmt.Sprint(h.ID), h.Name})
	}
	writeTable(w, rows, func(row int, line string) string {
		if row == 0 {
			return styles.Header.Render(line)
		}
		return line
	})
}

// writeTable pads columns to their widest cell. Widths are measured with
// lipgloss so double-width runes line up.
func writeTable(w io.Writer, rows [][]string, style func(row int, line string) string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if cw := lipgloss.Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for r, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
			}
		}
		_, _ = fmt.Fprintln(w, style(r, strings.TrimRight(sb.String(), " ")))
	}
}

func dirBase(root string) string {
	root = strings.TrimRight(root, `/\`)
	if i := strings.LastIndexAny(root, `/\`); i >= 0 {
		return root[i+1:]
	}
	return root
}
