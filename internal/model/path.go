package model

// IsPathClear reports whether every square strictly between from and to is empty.
// The squares must share a rank, file or diagonal; the endpoints are not inspected.
func IsPathClear(board Board, from, to Square) bool {
	stepR := sign(to.Row - from.Row)
	stepC := sign(to.Col - from.Col)

	r, c := from.Row+stepR, from.Col+stepC
	for (r != to.Row || c != to.Col) && (Square{Row: r, Col: c}).onBoard() {
		if !board[r][c].IsEmpty() {
			return false
		}
		r += stepR
		c += stepC
	}
	return true
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
