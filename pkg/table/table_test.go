package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"
)

// TableTestSuite tests the table renderer
type TableTestSuite struct {
	suite.Suite
}

// TestColumnWidth tests that the widest cell sets the column width
func (s *TableTestSuite) TestColumnWidth() {
	t := New(2, 3)
	s.Require().NoError(t.Set(0, 0, Left, "a-long-left-cell"))
	s.Require().NoError(t.Set(0, 1, Right, "7"))
	s.Require().NoError(t.Set(0, 2, Rule, "ignored-even-if-longer-than-the-rest"))
	s.Require().NoError(t.Set(1, 0, Right, "x"))

	s.Equal([]int{16, 1}, t.Widths())
	s.Equal(
		"a-long-left-cell x\n"+
			"               7  \n"+
			"================  \n",
		t.String())
}

// TestIdempotent tests that rendering twice gives the same output
func (s *TableTestSuite) TestIdempotent() {
	t := New(3, 2)
	s.Require().NoError(t.Set(0, 0, Left, "Data"))
	s.Require().NoError(t.Set(1, 0, Right, "1.00GiB"))
	s.Require().NoError(t.Set(2, 1, Rule, ""))

	var first, second bytes.Buffer
	s.Require().NoError(t.Render(&first))
	s.Require().NoError(t.Render(&second))
	s.Equal(first.String(), second.String())
}

// TestEmptyCells tests that empty cells render as blank padding
func (s *TableTestSuite) TestEmptyCells() {
	t := New(3, 2)
	s.Require().NoError(t.Set(0, 0, Left, "ab"))
	s.Require().NoError(t.Set(2, 1, Right, "c"))

	s.Equal("ab   \n    c\n", t.String())
}

// TestEmptyColumnRule tests a rule in a column with no text
func (s *TableTestSuite) TestEmptyColumnRule() {
	t := New(2, 1)
	s.Require().NoError(t.Set(0, 0, Rule, "text"))
	s.Require().NoError(t.Set(1, 0, Left, "z"))

	s.Equal(" z\n", t.String())
}

// TestRuleChar tests a custom rule character
func (s *TableTestSuite) TestRuleChar() {
	t := New(1, 2)
	t.RuleChar = '-'
	s.Require().NoError(t.Set(0, 0, Left, "abc"))
	s.Require().NoError(t.Set(0, 1, Rule, ""))

	s.Equal("abc\n---\n", t.String())
}

// TestWideRunes tests that width counts printable cells, not bytes
func (s *TableTestSuite) TestWideRunes() {
	t := New(1, 2)
	s.Require().NoError(t.Set(0, 0, Left, "日本"))
	s.Require().NoError(t.Set(0, 1, Right, "ab"))

	s.Equal([]int{4}, t.Widths())
	s.Equal("日本\n  ab\n", t.String())
}

// TestOutOfRange tests cell bounds checking
func (s *TableTestSuite) TestOutOfRange() {
	t := New(2, 2)
	s.ErrorIs(t.Set(2, 0, Left, "x"), errOutOfRange)
	s.ErrorIs(t.Set(0, -1, Left, "x"), errOutOfRange)
	_, err := t.Get(0, 2)
	s.ErrorIs(err, errOutOfRange)

	c, err := t.Get(1, 1)
	s.NoError(err)
	s.Equal(Cell{}, c)
}

// TestTableSuite runs the table test suite
func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableTestSuite))
}
