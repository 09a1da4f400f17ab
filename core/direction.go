package core

import "fmt"

// Direction relates two grid-adjacent cells.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction.
var Directions = [4]Direction{Up, Down, Left, Right}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool { return d <= Right }

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	panic(fmt.Sprintf("core: invalid direction %d", d))
}

// Offset returns the (row, col) step from a cell to its neighbour in direction d.
func (d Direction) Offset() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	panic(fmt.Sprintf("core: invalid direction %d", d))
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", d)
}
