package models

// SheetData holds the cells of one physical sheet.
type SheetData struct {
	// Name is the sheet name.
	Name string
	// Rows holds physical rows by zero-based position; row 0 is the header row.
	// A row may be shorter than others; missing trailing cells are blank.
	Rows [][]Cell
}

// Cell returns the cell at (row, col), or a blank cell when the position is empty.
func (s *SheetData) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) {
		return BlankCell()
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return BlankCell()
	}
	return cells[col]
}

// IsBlankRow reports whether every cell of the row is blank or whitespace-only.
func (s *SheetData) IsBlankRow(row int) bool {
	if row < 0 || row >= len(s.Rows) {
		return true
	}
	for _, c := range s.Rows[row] {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
