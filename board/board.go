// Package board tracks which grid cells hold a live target
// It is the single source of occupancy truth and has no timing knowledge
package board

import "time"

// Target is one live scoring opportunity bound to a cell
type Target struct {
	Cell      int
	Spawn     uint64    // Spawn generation id, never 0
	ExpiresAt time.Time // Game time
}

// Board is a fixed-size set of cells with at most one target per cell
// Not safe for concurrent use
type Board struct {
	slots []Target
	count int
}

// New creates a board with size cells
func New(size int) *Board {
	if size < 0 {
		size = 0
	}
	return &Board{slots: make([]Target, size)}
}

// Size returns the number of cells
func (b *Board) Size() int {
	return len(b.slots)
}

// Len returns the number of occupied cells
func (b *Board) Len() int {
	return b.count
}

func (b *Board) inRange(cell int) bool {
	return cell >= 0 && cell < len(b.slots)
}

// Occupy places t on its cell
// Returns false if the cell is out of range, already occupied, or t has no spawn id
func (b *Board) Occupy(t Target) bool {
	if !b.inRange(t.Cell) || t.Spawn == 0 {
		return false
	}
	if b.slots[t.Cell].Spawn != 0 {
		return false
	}
	b.slots[t.Cell] = t
	b.count++
	return true
}

// Vacate clears cell, no-op if empty or out of range
func (b *Board) Vacate(cell int) {
	if !b.inRange(cell) || b.slots[cell].Spawn == 0 {
		return
	}
	b.slots[cell] = Target{}
	b.count--
}

// VacateIf clears cell only if it still holds the given spawn
func (b *Board) VacateIf(cell int, spawn uint64) bool {
	if !b.inRange(cell) || spawn == 0 || b.slots[cell].Spawn != spawn {
		return false
	}
	b.Vacate(cell)
	return true
}

// IsOccupied reports whether cell holds a target
func (b *Board) IsOccupied(cell int) bool {
	return b.inRange(cell) && b.slots[cell].Spawn != 0
}

// Target returns the target on cell
func (b *Board) Target(cell int) (Target, bool) {
	if !b.IsOccupied(cell) {
		return Target{}, false
	}
	return b.slots[cell], true
}

// FreeCells returns unoccupied cells in ascending order among the first total cells
func (b *Board) FreeCells(total int) []int {
	if total > len(b.slots) {
		total = len(b.slots)
	}
	if total <= 0 {
		return nil
	}
	free := make([]int, 0, total)
	for cell := 0; cell < total; cell++ {
		if b.slots[cell].Spawn == 0 {
			free = append(free, cell)
		}
	}
	return free
}

// Occupied returns occupied cells in ascending order
func (b *Board) Occupied() []int {
	cells := make([]int, 0, b.count)
	for cell, t := range b.slots {
		if t.Spawn != 0 {
			cells = append(cells, cell)
		}
	}
	return cells
}

// Targets returns a copy of all live targets ordered by cell
func (b *Board) Targets() []Target {
	targets := make([]Target, 0, b.count)
	for _, t := range b.slots {
		if t.Spawn != 0 {
			targets = append(targets, t)
		}
	}
	return targets
}

// Clear empties the board and returns the cells that were occupied
func (b *Board) Clear() []int {
	cleared := b.Occupied()
	for _, cell := range cleared {
		b.slots[cell] = Target{}
	}
	b.count = 0
	return cleared
}
