package model

import "encoding/json"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

// Piece is a colored piece. The zero Piece is an empty square.
type Piece struct {
	Color Color     `json:"color"`
	Type  PieceType `json:"type"`
}

func (p Piece) IsEmpty() bool {
	return p.Type == ""
}

// Code returns the two letter code used by the page, e.g. "wP" or "bN".
func (p Piece) Code() string {
	if p.IsEmpty() {
		return ""
	}
	letter := p.Type.getPieceNotation()
	if p.Type == Pawn {
		letter = "P"
	}
	return string(p.Color) + letter
}

var glyphs = map[string]string{
	"wK": "♔", "wQ": "♕", "wR": "♖", "wB": "♗", "wN": "♘", "wP": "♙",
	"bK": "♚", "bQ": "♛", "bR": "♜", "bB": "♝", "bN": "♞", "bP": "♟",
}

// Glyph returns the unicode chess symbol for the piece, "" for an empty square
// and "?" for anything unrecognised.
func (p Piece) Glyph() string {
	if p.IsEmpty() {
		return ""
	}
	if g, ok := glyphs[p.Code()]; ok {
		return g
	}
	return "?"
}

// Empty squares are encoded as null.
func (p Piece) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("null"), nil
	}
	type piece Piece
	return json.Marshal(piece(p))
}

func (p *Piece) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Piece{}
		return nil
	}
	type piece Piece
	var v piece
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Piece(v)
	return nil
}

// Board is indexed [row][col] with row 0 on rank 8.
type Board [8][8]Piece

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	var board Board
	for col, pt := range backRank {
		board[0][col] = Piece{Color: Black, Type: pt}
		board[1][col] = Piece{Color: Black, Type: Pawn}
		board[6][col] = Piece{Color: White, Type: Pawn}
		board[7][col] = Piece{Color: White, Type: pt}
	}
	return board
}

func (b Board) At(sq Square) Piece {
	return b[sq.Row][sq.Col]
}

// Apply moves the piece on from to to and returns the resulting board along with
// whatever piece was captured. The receiver is left untouched.
func (b Board) Apply(from, to Square) (Board, Piece) {
	captured := b[to.Row][to.Col]
	b[to.Row][to.Col] = b[from.Row][from.Col]
	b[from.Row][from.Col] = Piece{}
	return b, captured
}

// Count returns the number of occupied squares.
func (b Board) Count() int {
	n := 0
	for _, row := range b {
		for _, p := range row {
			if !p.IsEmpty() {
				n++
			}
		}
	}
	return n
}
