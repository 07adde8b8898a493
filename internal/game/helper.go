package game

// winLines are the 3 rows, 3 columns and 2 diagonals of the board.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func checkWinner(b Board) Result {
	for _, line := range winLines {
		first := b[line[0]]
		if first != None && first == b[line[1]] && first == b[line[2]] {
			return Result(first)
		}
	}

	if b.Full() {
		return Draw
	}

	return NoResult
}

// Full reports whether every cell is taken.
func (b Board) Full() bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}
