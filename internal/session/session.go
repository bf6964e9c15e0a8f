package session

import (
	"errors"
	"fmt"

	"ctchen222/Connect-Four/internal/game"
)

// ErrSnapshot is returned when a snapshot cannot be turned back into a session.
var ErrSnapshot = errors.New("invalid session snapshot")

// Result describes how a drop affected the round.
type Result string

const (
	ResultNone Result = ""
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
)

// DefaultPlayers are used when a table is created without names.
var DefaultPlayers = [2]string{"Player 1", "Player 2"}

// Outcome is what a successful drop did to the table.
type Outcome struct {
	Column int
	Row    int
	Token  game.Token
	Round  int
	Result Result
	Winner game.Token
	// FinalBoard holds the finished round's grid when Result is not ResultNone,
	// since the session has already moved on to a fresh board.
	FinalBoard [][]game.Token
}

// Session is the controller for one hot-seat table. It owns the board of the
// current round, whose turn it is, and the running score. It is not safe for
// concurrent use.
type Session struct {
	Players [2]string
	Score   [2]int
	Round   int
	Turn    int

	board  *game.Board
	width  int
	height int
}

// New returns a session that has already started its first round.
func New(width, height int, players [2]string) (*Session, error) {
	if _, err := game.NewBoard(width, height); err != nil {
		return nil, err
	}

	for i := range players {
		if players[i] == "" {
			players[i] = DefaultPlayers[i]
		}
	}

	s := &Session{
		Players: players,
		width:   width,
		height:  height,
	}
	s.NewRound()
	return s, nil
}

// NewRound discards the current board. The starting player alternates with the
// round number.
func (s *Session) NewRound() {
	s.Round++
	// Dimensions were validated by New or Restore.
	s.board, _ = game.NewBoard(s.width, s.height)
	s.Turn = s.Round % 2
}

// Board returns the board of the current round.
func (s *Session) Board() *game.Board {
	return s.board
}

// Next returns the token that will be dropped by the next RequestDrop.
func (s *Session) Next() game.Token {
	return game.Token(s.Turn % 2)
}

// RequestDrop drops the next player's token into column. A win scores a point
// and a win or a full board starts a new round.
func (s *Session) RequestDrop(column int) (*Outcome, error) {
	token := s.Next()

	row, err := s.board.Drop(column, token)
	if err != nil {
		return nil, fmt.Errorf("round %d, %s player: %w", s.Round, token, err)
	}

	outcome := &Outcome{
		Column: column,
		Row:    row,
		Token:  token,
		Round:  s.Round,
	}

	if s.board.CheckWin(column, row) {
		s.Score[token]++
		outcome.Result = ResultWin
		outcome.Winner = token
		outcome.FinalBoard = s.board.Columns()
		s.NewRound()
	} else {
		s.Turn++
	}

	if s.board.IsBoardFull() {
		outcome.Result = ResultDraw
		outcome.FinalBoard = s.board.Columns()
		s.NewRound()
	}

	return outcome, nil
}

// DropCommand is bound to a single board column, the column travels with the
// command as data.
type DropCommand struct {
	Column int
}

// Execute requests a drop in the command's column.
func (c DropCommand) Execute(s *Session) (*Outcome, error) {
	return s.RequestDrop(c.Column)
}

// Commands returns one DropCommand per column of the board.
func (s *Session) Commands() []DropCommand {
	cmds := make([]DropCommand, s.width)
	for i := range cmds {
		cmds[i] = DropCommand{Column: i}
	}
	return cmds
}
