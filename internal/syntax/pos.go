package syntax

import "fmt"

// Pos is a 1-based column in the whitespace-stripped expression text.
// The zero value is an invalid position.
type Pos struct {
	col uint32
}

// NewPos creates a Pos for the given 1-based column.
func NewPos(col uint32) Pos {
	return Pos{col: col}
}

// String returns "col:N", or "?" for the zero Pos.
func (p Pos) String() string {
	if !p.IsValid() {
		return "?"
	}
	return fmt.Sprintf("col:%d", p.col)
}

// IsValid reports whether the position is valid.
func (p Pos) IsValid() bool {
	return p.col > 0
}

// Col returns the 1-based column.
func (p Pos) Col() uint32 {
	return p.col
}
