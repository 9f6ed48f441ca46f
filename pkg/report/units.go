// Package report builds the human-readable space reports of a filesystem.
package report

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Units selects how byte counts are printed.
type Units uint8

const (
	// Human prints binary-prefixed sizes such as "1.5GiB".
	Human Units = iota
	// Bytes prints raw integer byte counts.
	Bytes
)

// Format renders n in the selected units.
func (u Units) Format(n uint64) string {
	if u == Bytes {
		return strconv.FormatUint(n, 10)
	}
	return strings.ReplaceAll(humanize.IBytes(n), " ", "")
}

// width is the value column width of the summary report.
func (u Units) width() int {
	if u == Bytes {
		return 18
	}
	return 9
}

// UnitsFor returns Human when human is set, Bytes otherwise.
func UnitsFor(human bool) Units {
	if human {
		return Human
	}
	return Bytes
}
