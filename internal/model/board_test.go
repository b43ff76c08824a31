package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// boardWith returns an empty board with the given pieces placed by algebraic square.
func boardWith(t *testing.T, pieces map[string]Piece) Board {
	t.Helper()
	var b Board
	for text, p := range pieces {
		sq, err := ParseSquare(text)
		if err != nil {
			t.Fatalf("ParseSquare(%q) error: %v", text, err)
		}
		b[sq.Row][sq.Col] = p
	}
	return b
}

func sq(t *testing.T, text string) Square {
	t.Helper()
	s, err := ParseSquare(text)
	if err != nil {
		t.Fatalf("ParseSquare(%q) error: %v", text, err)
	}
	return s
}

func TestNewBoard(t *testing.T) {
	b := NewBoard()

	if got := b.Count(); got != 32 {
		t.Fatalf("Count() = %d, want 32", got)
	}

	wantCodes := [8][8]string{
		{"bR", "bN", "bB", "bQ", "bK", "bB", "bN", "bR"},
		{"bP", "bP", "bP", "bP", "bP", "bP", "bP", "bP"},
		{}, {}, {}, {},
		{"wP", "wP", "wP", "wP", "wP", "wP", "wP", "wP"},
		{"wR", "wN", "wB", "wQ", "wK", "wB", "wN", "wR"},
	}
	var gotCodes [8][8]string
	for r := range b {
		for c := range b[r] {
			gotCodes[r][c] = b[r][c].Code()
		}
	}
	if diff := cmp.Diff(wantCodes, gotCodes); diff != "" {
		t.Errorf("NewBoard() layout mismatch (-want +got):\n%s", diff)
	}
}

func TestBoardApply(t *testing.T) {
	b := boardWith(t, map[string]Piece{
		"d4": {Color: White, Type: Queen},
		"d7": {Color: Black, Type: Knight},
	})

	next, captured := b.Apply(sq(t, "d4"), sq(t, "d7"))

	if captured != (Piece{Color: Black, Type: Knight}) {
		t.Errorf("captured = %+v, want black knight", captured)
	}
	if !next.At(sq(t, "d4")).IsEmpty() {
		t.Errorf("source square not cleared")
	}
	if next.At(sq(t, "d7")) != (Piece{Color: White, Type: Queen}) {
		t.Errorf("destination = %+v, want white queen", next.At(sq(t, "d7")))
	}
	if b.At(sq(t, "d4")) != (Piece{Color: White, Type: Queen}) {
		t.Errorf("Apply mutated the original board")
	}
	if next.Count() != 1 {
		t.Errorf("Count() = %d, want 1", next.Count())
	}
}

func TestPieceGlyph(t *testing.T) {
	tests := []struct {
		piece Piece
		want  string
	}{
		{Piece{}, ""},
		{Piece{Color: White, Type: King}, "♔"},
		{Piece{Color: White, Type: Pawn}, "♙"},
		{Piece{Color: Black, Type: Queen}, "♛"},
		{Piece{Color: Black, Type: Knight}, "♞"},
		{Piece{Color: White, Type: "dragon"}, "?"},
	}
	for _, tt := range tests {
		if got := tt.piece.Glyph(); got != tt.want {
			t.Errorf("%+v.Glyph() = %q, want %q", tt.piece, got, tt.want)
		}
	}
}

func TestBoardJSON(t *testing.T) {
	b := NewBoard()
	b, _ = b.Apply(sq(t, "e2"), sq(t, "e4"))

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var got Board
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("board mismatch after JSON (-want +got):\n%s", diff)
	}

	empty, err := json.Marshal(Piece{})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(empty) != "null" {
		t.Errorf("empty piece encoded as %s, want null", empty)
	}
}
