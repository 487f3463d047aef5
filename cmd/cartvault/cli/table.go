// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// columnGap separates table columns.
const columnGap = "  "

// Table accumulates rows and writes them column-aligned. Headings are
// styled when the destination is a terminal.
type Table struct {
	headings []string
	rows     [][]string
}

// NewTable starts a table with the given column headings.
func NewTable(headings ...string) *Table {
	return &Table{headings: headings}
}

// Row appends one row. Missing trailing cells are left blank and extra
// cells are dropped.
func (t *Table) Row(cells ...string) {
	row := make([]string, len(t.headings))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Write renders the table to w.
func (t *Table) Write(w io.Writer) error {
	widths := make([]int, len(t.headings))
	for i, heading := range t.headings {
		widths[i] = lipgloss.Width(heading)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	styled := IsTerminal(w)
	var out strings.Builder
	for i, heading := range t.headings {
		// Pad before styling: escape sequences have no visible width.
		cell := pad(heading, widths[i], i == len(t.headings)-1)
		if styled {
			cell = headingStyle.Render(cell)
		}
		out.WriteString(cell)
	}
	out.WriteByte('\n')
	for _, row := range t.rows {
		for i, cell := range row {
			out.WriteString(pad(cell, widths[i], i == len(row)-1))
		}
		out.WriteByte('\n')
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func pad(cell string, width int, last bool) string {
	if last {
		return cell
	}
	return cell + strings.Repeat(" ", width-lipgloss.Width(cell)) + columnGap
}

// WriteJSON writes value to w as indented JSON.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
