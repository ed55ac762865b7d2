package session

import "errors"

var (
	ErrNoActivePlayer   = errors.New("no active player left")
	ErrGameOver         = errors.New("game is over")
	ErrNoPiece          = errors.New("no piece on source tile")
	ErrNotYourPiece     = errors.New("piece belongs to another player")
	ErrTileOccupied     = errors.New("tile already occupied")
	ErrIllegalMove      = errors.New("move not allowed by piece rules")
	ErrIllegalPlacement = errors.New("placement not allowed by piece rules")
)
