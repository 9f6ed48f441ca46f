// Package table renders a fixed-size grid of text cells with per-cell
// alignment and automatically sized columns.
package table

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Alignment tells the renderer how to place a cell's text in its column.
type Alignment uint8

const (
	// Left pads the text on the right.
	Left Alignment = iota
	// Right pads the text on the left.
	Right
	// Rule draws a line of the rule character as wide as the column.
	// The cell text is ignored.
	Rule
)

// DefaultRuleChar is the character rule cells are drawn with.
const DefaultRuleChar = '='

var errOutOfRange = errors.New("cell out of range")

// Cell is a single grid entry. The zero value is an empty left-aligned cell.
type Cell struct {
	Align Alignment
	Text  string
}

// Table is a row-major grid of cells with dimensions fixed at creation.
type Table struct {
	cols, rows int
	cells      []Cell
	RuleChar   rune
}

// New creates an empty table of cols columns and rows rows.
func New(cols, rows int) *Table {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &Table{
		cols:     cols,
		rows:     rows,
		cells:    make([]Cell, cols*rows),
		RuleChar: DefaultRuleChar,
	}
}

// Columns returns the number of columns.
func (t *Table) Columns() int {
	return t.cols
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return t.rows
}

// Set stores text at (col, row) with the given alignment.
func (t *Table) Set(col, row int, align Alignment, text string) error {
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return errOutOfRange
	}
	t.cells[row*t.cols+col] = Cell{Align: align, Text: text}
	return nil
}

// Get returns the cell at (col, row).
func (t *Table) Get(col, row int) (Cell, error) {
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return Cell{}, errOutOfRange
	}
	return t.cells[row*t.cols+col], nil
}

// Widths returns the printable width of every column: the widest non-empty,
// non-rule cell in it.
func (t *Table) Widths() []int {
	widths := make([]int, t.cols)
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			c := t.cells[row*t.cols+col]
			if c.Align == Rule || c.Text == "" {
				continue
			}
			if w := lipgloss.Width(c.Text); w > widths[col] {
				widths[col] = w
			}
		}
	}
	return widths
}

// Render writes the table to w, one line per row, columns separated by a
// single space.
func (t *Table) Render(w io.Writer) error {
	widths := t.Widths()
	rule := string(t.RuleChar)

	bw := bufio.NewWriter(w)
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			c := t.cells[row*t.cols+col]
			bw.WriteString(pad(c, widths[col], rule))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// String renders the table into a string.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func pad(c Cell, width int, rule string) string {
	if c.Align == Rule {
		return strings.Repeat(rule, width)
	}

	fill := width - lipgloss.Width(c.Text)
	if fill <= 0 {
		return c.Text
	}
	if c.Align == Right {
		return strings.Repeat(" ", fill) + c.Text
	}
	return c.Text + strings.Repeat(" ", fill)
}
