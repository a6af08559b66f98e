package ingest

// CellKind the storage type of a spreadsheet cell as read from the workbook.
type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
	CellBool
	CellFormula
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	case CellFormula:
		return "formula"
	default:
		return "blank"
	}
}

// Cell one cell value, independent of the workbook format.
type Cell struct {
	Kind CellKind
	// Text holds the string for CellText and the formula (without '=') for CellFormula.
	Text   string
	Number float64
	Bool   bool
	// DateFormatted is set on number cells whose number format renders a date.
	DateFormatted bool
}

// Blank is the zero cell.
var Blank = Cell{}

func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// DateCell a number cell holding an Excel serial date.
func DateCell(serial float64) Cell {
	return Cell{Kind: CellNumber, Number: serial, DateFormatted: true}
}

func BoolCell(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

func FormulaCell(formula string) Cell { return Cell{Kind: CellFormula, Text: formula} }

// IsBlank reports a blank cell or a text cell holding only whitespace.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellBlank:
		return true
	case CellText:
		for _, r := range c.Text {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// cellAt returns cells[i], or Blank past the end of a short row.
func cellAt(cells []Cell, i int) Cell {
	if i < 0 || i >= len(cells) {
		return Blank
	}
	return cells[i]
}

func rowIsBlank(cells []Cell) bool {
	for _, c := range cells {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
