package terrain

// PossibilitySet is the live set of cells still open for building.
// Cells are kept in a slice so draws by index are deterministic; removal
// swaps the last cell into the freed slot.
type PossibilitySet struct {
	cells []Cell
	index map[Cell]int
}

// NewPossibilitySet returns a set holding cells in the given order.
func NewPossibilitySet(cells ...Cell) *PossibilitySet {
	p := &PossibilitySet{index: make(map[Cell]int, len(cells))}
	for _, c := range cells {
		p.Add(c)
	}
	return p
}

// Add inserts c if it is not already present.
func (p *PossibilitySet) Add(c Cell) {
	if _, ok := p.index[c]; ok {
		return
	}
	p.index[c] = len(p.cells)
	p.cells = append(p.cells, c)
}

// Remove deletes c and reports whether it was present.
func (p *PossibilitySet) Remove(c Cell) bool {
	i, ok := p.index[c]
	if !ok {
		return false
	}
	last := len(p.cells) - 1
	if i != last {
		moved := p.cells[last]
		p.cells[i] = moved
		p.index[moved] = i
	}
	p.cells = p.cells[:last]
	delete(p.index, c)
	return true
}

// Has reports whether c is present.
func (p *PossibilitySet) Has(c Cell) bool {
	_, ok := p.index[c]
	return ok
}

// Len returns the number of cells.
func (p *PossibilitySet) Len() int {
	return len(p.cells)
}

// At returns the i-th cell in the current order.
func (p *PossibilitySet) At(i int) Cell {
	return p.cells[i]
}

// Cells returns a copy of the current cells.
func (p *PossibilitySet) Cells() []Cell {
	out := make([]Cell, len(p.cells))
	copy(out, p.cells)
	return out
}
