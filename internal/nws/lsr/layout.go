package lsr

import "strings"

// Column locates a field on one of the two fixed-width report lines. An
// End of -1 runs to the end of the line.
type Column struct {
	Line  int
	Start int
	End   int
}

// Layout gives the column positions of a report block.
type Layout struct {
	Clock     Column
	TypeText  Column
	City      Column
	LatLon    Column
	Date      Column
	Magnitude Column
	County    Column
	State     Column
	Source    Column
}

// DefaultLayout matches the NWS local storm report template.
var DefaultLayout = Layout{
	Clock:     Column{0, 0, 12},
	TypeText:  Column{0, 12, 29},
	City:      Column{0, 29, 53},
	LatLon:    Column{0, 53, -1},
	Date:      Column{1, 0, 12},
	Magnitude: Column{1, 12, 29},
	County:    Column{1, 29, 48},
	State:     Column{1, 48, 50},
	Source:    Column{1, 50, -1},
}

// slice returns the trimmed text of col, tolerating short lines.
func (c Column) slice(lines [2]string) string {
	line := lines[c.Line]
	if c.Start >= len(line) {
		return ""
	}
	end := c.End
	if end < 0 || end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[c.Start:end])
}
