package model

import (
	"errors"
	"fmt"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Square is a grid position. Row 0 is rank 8, column 0 is file a.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ParseSquare converts algebraic text like "e2" into a Square.
// Only lowercase files a-h followed by a rank digit 1-8 are accepted.
func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
	}
	file, rank := text[0], text[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
	}
	return Square{Row: 8 - int(rank-'0'), Col: int(file - 'a')}, nil
}

func (s Square) String() string {
	return fmt.Sprintf("%c%d", s.Col+'a', 8-s.Row)
}

func (s Square) fileNotation() string {
	return fmt.Sprintf("%c", s.Col+'a')
}

func (s Square) onBoard() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}
