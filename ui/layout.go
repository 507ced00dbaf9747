// Package ui presents a round in the terminal with tcell and routes keys and clicks to it
package ui

const (
	hudHeight  = 2 // Score/time line and status line
	helpHeight = 1
	marginX    = 1
	gapX       = 2
	gapY       = 1
)

// Rect is a screen rectangle in terminal cells
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout maps grid cells to screen rectangles for one screen size
type Layout struct {
	Width, Height int
	Rows, Cols    int
	Board         Rect   // Bounding box of every cell including gaps
	Cells         []Rect // Indexed by cell number, row-major
}

// ComputeLayout centres a rows x cols grid between the HUD and the help line
// Cells are at most twice as wide as tall so they look square in a terminal
func ComputeLayout(width, height, rows, cols int) Layout {
	l := Layout{Width: width, Height: height, Rows: rows, Cols: cols}
	if rows <= 0 || cols <= 0 {
		return l
	}

	availW := width - 2*marginX
	availH := height - hudHeight - helpHeight

	cellW := max(1, (availW-gapX*(cols-1))/cols)
	cellH := max(1, (availH-gapY*(rows-1))/rows)
	cellW = min(cellW, 2*cellH)
	cellH = min(cellH, max(1, cellW/2))

	boardW := cols*cellW + (cols-1)*gapX
	boardH := rows*cellH + (rows-1)*gapY
	x0 := max(0, (width-boardW)/2)
	y0 := max(hudHeight, hudHeight+(availH-boardH)/2)

	l.Board = Rect{X: x0, Y: y0, W: boardW, H: boardH}
	l.Cells = make([]Rect, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			l.Cells[r*cols+c] = Rect{
				X: x0 + c*(cellW+gapX),
				Y: y0 + r*(cellH+gapY),
				W: cellW,
				H: cellH,
			}
		}
	}
	return l
}

// InBoard reports whether (x, y) is inside the board area, gaps included
func (l Layout) InBoard(x, y int) bool {
	return len(l.Cells) > 0 && l.Board.Contains(x, y)
}

// CellAt returns the cell under (x, y), false for gaps and anything outside the board
func (l Layout) CellAt(x, y int) (int, bool) {
	if !l.InBoard(x, y) {
		return -1, false
	}
	cellW, cellH := l.Cells[0].W, l.Cells[0].H
	dx, dy := x-l.Board.X, y-l.Board.Y
	c, offX := dx/(cellW+gapX), dx%(cellW+gapX)
	r, offY := dy/(cellH+gapY), dy%(cellH+gapY)
	if offX >= cellW || offY >= cellH || c >= l.Cols || r >= l.Rows {
		return -1, false
	}
	return r*l.Cols + c, true
}
