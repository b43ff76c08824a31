package model

// Rejection reasons. These strings are shown to players verbatim.
const (
	ReasonInvalidCoordinates = "Invalid coordinates"
	ReasonNoMovement         = "No movement"
	ReasonNoPiece            = "No piece at source"
	ReasonNotYourTurn        = "It's not your turn"
	ReasonOwnPiece           = "Cannot capture your own piece"
	ReasonPawnForward        = "Invalid pawn forward move"
	ReasonPawnCapture        = "Invalid pawn capture"
	ReasonPawnMove           = "Invalid pawn move"
	ReasonRookMove           = "Invalid rook move"
	ReasonRookBlocked        = "Path blocked for rook"
	ReasonBishopMove         = "Invalid bishop move"
	ReasonBishopBlocked      = "Path blocked for bishop"
	ReasonQueenMove          = "Invalid queen move"
	ReasonQueenBlocked       = "Path blocked for queen"
	ReasonKnightMove         = "Invalid knight move"
	ReasonKingMove           = "Invalid king move"
	ReasonUnknownPiece       = "Unknown piece type"
)

// Verdict is the outcome of validating a single move. Reason is empty when Legal.
type Verdict struct {
	Legal  bool   `json:"legal"`
	Reason string `json:"reason,omitempty"`
}

var legal = Verdict{Legal: true}

func reject(reason string) Verdict {
	return Verdict{Reason: reason}
}

// Validate checks whether moving from one algebraic square to another is a
// structurally legal ply for turn. It does not look at king safety.
func Validate(board Board, from, to string, turn Color) Verdict {
	a, errA := ParseSquare(from)
	b, errB := ParseSquare(to)
	if errA != nil || errB != nil {
		return reject(ReasonInvalidCoordinates)
	}
	return ValidateMove(board, a, b, turn)
}

// ValidateMove is Validate for already parsed squares.
func ValidateMove(board Board, from, to Square, turn Color) Verdict {
	if !from.onBoard() || !to.onBoard() {
		return reject(ReasonInvalidCoordinates)
	}
	if from == to {
		return reject(ReasonNoMovement)
	}

	piece := board.At(from)
	if piece.IsEmpty() {
		return reject(ReasonNoPiece)
	}
	if piece.Color != turn {
		return reject(ReasonNotYourTurn)
	}
	target := board.At(to)
	if !target.IsEmpty() && target.Color == piece.Color {
		return reject(ReasonOwnPiece)
	}

	switch piece.Type {
	case Pawn:
		return validatePawn(board, piece, from, to)
	case Rook:
		return validateRook(board, from, to)
	case Bishop:
		return validateBishop(board, from, to)
	case Queen:
		return validateQueen(board, from, to)
	case Knight:
		return validateKnight(from, to)
	case King:
		return validateKing(from, to)
	default:
		return reject(ReasonUnknownPiece)
	}
}

func validatePawn(board Board, piece Piece, from, to Square) Verdict {
	dir, startRow := -1, 6
	if piece.Color == Black {
		dir, startRow = 1, 1
	}
	dr := to.Row - from.Row
	dc := to.Col - from.Col
	target := board.At(to)

	if dc == 0 {
		if dr == dir && target.IsEmpty() {
			return legal
		}
		if from.Row == startRow && dr == 2*dir {
			mid := board[from.Row+dir][from.Col]
			if mid.IsEmpty() && target.IsEmpty() {
				return legal
			}
		}
		return reject(ReasonPawnForward)
	}
	if abs(dc) == 1 && dr == dir {
		if !target.IsEmpty() && target.Color != piece.Color {
			return legal
		}
		return reject(ReasonPawnCapture)
	}
	return reject(ReasonPawnMove)
}

func validateRook(board Board, from, to Square) Verdict {
	if from.Row != to.Row && from.Col != to.Col {
		return reject(ReasonRookMove)
	}
	if !IsPathClear(board, from, to) {
		return reject(ReasonRookBlocked)
	}
	return legal
}

func validateBishop(board Board, from, to Square) Verdict {
	if abs(to.Row-from.Row) != abs(to.Col-from.Col) {
		return reject(ReasonBishopMove)
	}
	if !IsPathClear(board, from, to) {
		return reject(ReasonBishopBlocked)
	}
	return legal
}

func validateQueen(board Board, from, to Square) Verdict {
	straight := from.Row == to.Row || from.Col == to.Col
	diagonal := abs(to.Row-from.Row) == abs(to.Col-from.Col)
	if !straight && !diagonal {
		return reject(ReasonQueenMove)
	}
	if !IsPathClear(board, from, to) {
		return reject(ReasonQueenBlocked)
	}
	return legal
}

// Knights jump, so nothing in between matters.
func validateKnight(from, to Square) Verdict {
	adr, adc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if (adr == 2 && adc == 1) || (adr == 1 && adc == 2) {
		return legal
	}
	return reject(ReasonKnightMove)
}

func validateKing(from, to Square) Verdict {
	if max(abs(to.Row-from.Row), abs(to.Col-from.Col)) == 1 {
		return legal
	}
	return reject(ReasonKingMove)
}
