// internal/piece/piece.go
//
// Closed enumerations shared by rule documents, expressions and sessions.
// Defines:
//   - Color: a player's piece color; one player per color.
//   - Model: the kind of a piece.
//   - PlayerState: active → won | lost.
//
// All three encode as lowercase names in YAML and JSON.
package piece

import (
	"fmt"
	"strings"
)

// Color identifies a player.
type Color uint8

const (
	White Color = iota
	Black
	Red
	Green
	Blue
	Yellow
)

var colorNames = [...]string{"white", "black", "red", "green", "blue", "yellow"}

// Colors lists every color in declaration order.
func Colors() []Color { return []Color{White, Black, Red, Green, Blue, Yellow} }

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// ParseColor maps a name (case-insensitive) to a Color.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range colorNames {
		if n == s {
			return Color(i), true
		}
	}
	return 0, false
}

func (c Color) MarshalText() ([]byte, error) {
	if int(c) >= len(colorNames) {
		return nil, fmt.Errorf("unknown color %d", uint8(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, ok := ParseColor(string(b))
	if !ok {
		return fmt.Errorf("unknown color %q; valid: %v", b, colorNames)
	}
	*c = v
	return nil
}

// Model identifies the kind of a piece.
type Model uint8

const (
	Pawn Model = iota
	Rook
	Knight
	Bishop
	Queen
	King
)

var modelNames = [...]string{"pawn", "rook", "knight", "bishop", "queen", "king"}

// Models lists every model in declaration order.
func Models() []Model { return []Model{Pawn, Rook, Knight, Bishop, Queen, King} }

func (m Model) String() string {
	if int(m) < len(modelNames) {
		return modelNames[m]
	}
	return fmt.Sprintf("model(%d)", uint8(m))
}

// ParseModel maps a name (case-insensitive) to a Model.
func ParseModel(s string) (Model, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range modelNames {
		if n == s {
			return Model(i), true
		}
	}
	return 0, false
}

func (m Model) MarshalText() ([]byte, error) {
	if int(m) >= len(modelNames) {
		return nil, fmt.Errorf("unknown model %d", uint8(m))
	}
	return []byte(modelNames[m]), nil
}

func (m *Model) UnmarshalText(b []byte) error {
	v, ok := ParseModel(string(b))
	if !ok {
		return fmt.Errorf("unknown model %q; valid: %v", b, modelNames)
	}
	*m = v
	return nil
}

// PlayerState is one-directional: Active may become Won or Lost, never back.
type PlayerState uint8

const (
	Active PlayerState = iota
	Won
	Lost
)

var stateNames = [...]string{"active", "won", "lost"}

func (s PlayerState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ParsePlayerState maps a name (case-insensitive) to a PlayerState.
func ParsePlayerState(s string) (PlayerState, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range stateNames {
		if n == s {
			return PlayerState(i), true
		}
	}
	return 0, false
}

func (s PlayerState) MarshalText() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("unknown player state %d", uint8(s))
	}
	return []byte(stateNames[s]), nil
}

func (s *PlayerState) UnmarshalText(b []byte) error {
	v, ok := ParsePlayerState(string(b))
	if !ok {
		return fmt.Errorf("unknown player state %q; valid: %v", b, stateNames)
	}
	*s = v
	return nil
}
