// Package tables renders per-model comparisons in tabular form: one
// row per element, one column per model, with rows that disagree
// highlighted.
package tables

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kastman/sbml-diff/pkg/diff"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	diffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const absentCell = "-"

// RateLaws renders one row per reaction id with each model's rate law
// in infix form. The second return reports whether any row disagrees.
func RateLaws(models []diff.Model) (string, bool) {
	return build(models, "Reaction", allReactionIDs(models), func(m diff.Model, id string) (string, bool) {
		details, ok := m.ReactionDetails(id)
		if !ok {
			return "", false
		}
		return details.RateLaw, true
	})
}

// Parameters renders one row per global parameter id with each model's
// initial value. The second return reports whether any row disagrees.
func Parameters(models []diff.Model) (string, bool) {
	return build(models, "Parameter", allParameterIDs(models), func(m diff.Model, id string) (string, bool) {
		return m.ParameterValue(id)
	})
}

// build assembles the table. A row disagrees when any two models show
// distinct cells; absence from a model counts as a disagreement.
func build(models []diff.Model, elementHeader string, ids []string, cell func(diff.Model, string) (string, bool)) (string, bool) {
	headers := make([]string, 0, len(models)+1)
	headers = append(headers, elementHeader)
	for _, m := range models {
		headers = append(headers, m.Name())
	}

	rows := make([][]string, 0, len(ids))
	differing := map[int]bool{}
	for _, id := range ids {
		row := make([]string, 0, len(models)+1)
		row = append(row, id)
		for _, m := range models {
			value, ok := cell(m, id)
			if !ok {
				value = absentCell
			}
			row = append(row, value)
		}
		for _, value := range row[2:] {
			if value != row[1] {
				differing[len(rows)] = true
				break
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if differing[row] {
				return diffStyle
			}
			return lipgloss.NewStyle()
		})

	return t.Render() + "\n", len(differing) > 0
}

func allReactionIDs(models []diff.Model) []string {
	return union(models, diff.Model.ReactionIDs)
}

func allParameterIDs(models []diff.Model) []string {
	return union(models, diff.Model.ParameterIDs)
}

func union(models []diff.Model, ids func(diff.Model) []string) []string {
	seen := map[string]bool{}
	for _, m := range models {
		for _, id := range ids(m) {
			seen[id] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
