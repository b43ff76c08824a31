package model

import (
	"errors"
	"fmt"

	"github.com/corentings/chess/v2"
)

var ErrInvalidFEN = errors.New("invalid FEN")

var fromChessType = map[chess.PieceType]PieceType{
	chess.King:   King,
	chess.Queen:  Queen,
	chess.Rook:   Rook,
	chess.Bishop: Bishop,
	chess.Knight: Knight,
	chess.Pawn:   Pawn,
}

var toChessType = map[PieceType]chess.PieceType{
	King:   chess.King,
	Queen:  chess.Queen,
	Rook:   chess.Rook,
	Bishop: chess.Bishop,
	Knight: chess.Knight,
	Pawn:   chess.Pawn,
}

// chess squares count from a1 = 0 upward by file, then rank.
func toChessSquare(sq Square) chess.Square {
	return chess.Square((7-sq.Row)*8 + sq.Col)
}

// ParseFEN decodes a FEN string into a board and the side to move. Castling,
// en passant and clock fields are accepted but ignored.
func ParseFEN(fen string) (Board, Color, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return Board{}, "", fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()

	var board Board
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := Square{Row: row, Col: col}
			p := pos.Board().Piece(toChessSquare(sq))
			if p == chess.NoPiece {
				continue
			}
			color := White
			if p.Color() == chess.Black {
				color = Black
			}
			board[row][col] = Piece{Color: color, Type: fromChessType[p.Type()]}
		}
	}

	turn := White
	if pos.Turn() == chess.Black {
		turn = Black
	}
	return board, turn, nil
}

// FEN encodes the board with turn to move. Castling and en passant are always "-".
func (b Board) FEN(turn Color) string {
	pieces := make(map[chess.Square]chess.Piece)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b[row][col]
			pt, ok := toChessType[p.Type]
			if !ok {
				continue
			}
			color := chess.White
			if p.Color == Black {
				color = chess.Black
			}
			pieces[toChessSquare(Square{Row: row, Col: col})] = chess.NewPiece(pt, color)
		}
	}
	side := "w"
	if turn == Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s - - 0 1", chess.NewBoard(pieces).String(), side)
}
