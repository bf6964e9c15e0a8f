package session

import (
	"fmt"

	"ctchen222/Connect-Four/internal/game"
)

// Snapshot is the serializable state of a Session.
type Snapshot struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Columns [][]game.Token `json:"columns"`
	Players [2]string      `json:"players"`
	Score   [2]int         `json:"score"`
	Round   int            `json:"round"`
	Turn    int            `json:"turn"`
	Next    game.Token     `json:"next"`
}

// Snapshot captures the session state.
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		Width:   s.width,
		Height:  s.height,
		Columns: s.board.Columns(),
		Players: s.Players,
		Score:   s.Score,
		Round:   s.Round,
		Turn:    s.Turn,
		Next:    s.Next(),
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(snap *Snapshot) (*Session, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil", ErrSnapshot)
	}
	if snap.Round < 1 || snap.Turn < 0 || snap.Score[0] < 0 || snap.Score[1] < 0 {
		return nil, fmt.Errorf("%w: round %d, turn %d, score %v", ErrSnapshot, snap.Round, snap.Turn, snap.Score)
	}

	board, err := game.BoardFromColumns(snap.Width, snap.Height, snap.Columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}

	return &Session{
		Players: snap.Players,
		Score:   snap.Score,
		Round:   snap.Round,
		Turn:    snap.Turn,
		board:   board,
		width:   snap.Width,
		height:  snap.Height,
	}, nil
}
