package domain

// Immutable grid cell (column X, row Y). Y grows downward.
type Cell struct {
	X int
	Y int
}

// Direction is a single-step movement symbol understood by the simulator.
type Direction byte

const (
	Up    Direction = 'u'
	Down  Direction = 'd'
	Left  Direction = 'l'
	Right Direction = 'r'
	Stay  Direction = 's'
)

// AuthAlphabet is the symbol set of authorization strings, in enumeration order.
var AuthAlphabet = [4]Direction{Up, Down, Left, Right}

func (d Direction) String() string { return string(d) }

// Valid reports whether d is one of the five movement symbols.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right, Stay:
		return true
	}
	return false
}

// Manhattan returns |dx| + |dy| between two cells.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// StepToward returns the single greedy step from one cell toward another.
//
// The axis with the larger absolute offset wins. Equal offsets resolve to the
// vertical axis; Stay is returned only when both offsets are zero.
func StepToward(from, to Cell) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y

	if abs(dx) > abs(dy) {
		if dx > 0 {
			return Right
		}
		return Left
	}
	if dy != 0 {
		if dy > 0 {
			return Down
		}
		return Up
	}
	return Stay
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
