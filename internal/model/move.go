package model

import "fmt"

// MoveRequest is a move as submitted by a client, in algebraic notation.
type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Ply is an accepted half-move.
type Ply struct {
	Piece         Piece  `json:"piece"`
	From          Square `json:"from"`
	To            Square `json:"to"`
	CapturedPiece *Piece `json:"capturedPiece"`
	Notation      string `json:"notation"`
}

func makePly(board Board, from, to Square) Ply {
	ply := Ply{
		Piece:    board.At(from),
		From:     from,
		To:       to,
		Notation: getNotation(board, from, to),
	}
	if captured := board.At(to); !captured.IsEmpty() {
		ply.CapturedPiece = &captured
	}
	return ply
}

func getNotation(board Board, from, to Square) string {
	piece := board.At(from)
	prefix := piece.Type.getPieceNotation()
	capture := ""
	if !board.At(to).IsEmpty() {
		capture = "x"
	}
	pawnFile := ""
	if piece.Type == Pawn && from.Col != to.Col {
		pawnFile = from.fileNotation()
	}
	return fmt.Sprintf("%s%s%s%s", prefix, pawnFile, capture, to.String())
}
