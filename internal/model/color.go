package model

import (
	"errors"
	"fmt"
)

var ErrInvalidColor = errors.New("invalid color")

// Color is the side owning a piece, and also the side whose turn it is.
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Name returns the long form used in messages.
func (c Color) Name() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return string(c)
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

// ParseColor accepts both the short ("w", "b") and long ("white", "black") forms.
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
}
