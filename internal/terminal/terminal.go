package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"ctchen222/Connect-Four/internal/game"
	"ctchen222/Connect-Four/internal/session"
)

var tokenGlyph = map[game.Token]string{
	game.PlayerOne: "R",
	game.PlayerTwo: "Y",
}

// Dump draws the board with the top row first and 1-based column labels.
func Dump(w io.Writer, snap *session.Snapshot) {
	fmt.Fprintln(w)

	tabW := tabwriter.NewWriter(w, 4, 4, 1, ' ', 0)
	for col := 0; col < snap.Width; col++ {
		fmt.Fprintf(tabW, "%d\t", col+1)
	}
	fmt.Fprintln(tabW)
	for row := snap.Height - 1; row >= 0; row-- {
		for col := 0; col < snap.Width; col++ {
			cell := "."
			if row < len(snap.Columns[col]) {
				cell = tokenGlyph[snap.Columns[col][row]]
			}
			fmt.Fprintf(tabW, "%s\t", cell)
		}
		fmt.Fprintln(tabW)
	}
	_ = tabW.Flush()

	fmt.Fprintf(w, "\nRound %d  %s %d : %d %s\n",
		snap.Round, snap.Players[game.PlayerOne], snap.Score[game.PlayerOne],
		snap.Score[game.PlayerTwo], snap.Players[game.PlayerTwo])
}

// Play runs a hot-seat game on in and out until in is exhausted or a player
// types q. Columns are entered 1-based; n starts a new round.
func Play(in io.Reader, out io.Writer, s *session.Session) error {
	scanner := bufio.NewScanner(in)
	for {
		Dump(out, s.Snapshot())
		next := s.Next()
		fmt.Fprintf(out, "%s (%s) to play, column [1-%d], n for a new round, q to quit:\n",
			s.Players[next], next, s.Board().Width())

		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "":
			continue
		case "q", "quit":
			return nil
		case "n", "new":
			s.NewRound()
			continue
		}

		col, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(out, "not a column: %q\n", input)
			continue
		}

		outcome, err := session.DropCommand{Column: col - 1}.Execute(s)
		if err != nil {
			if errors.Is(err, game.ErrInvalidColumn) || errors.Is(err, game.ErrColumnFull) {
				fmt.Fprintln(out, err)
				continue
			}
			return err
		}

		switch outcome.Result {
		case session.ResultWin:
			Dump(out, &session.Snapshot{
				Width: s.Board().Width(), Height: s.Board().Height(),
				Columns: outcome.FinalBoard, Players: s.Players, Score: s.Score, Round: outcome.Round,
			})
			fmt.Fprintf(out, "%s wins round %d!\n", s.Players[outcome.Winner], outcome.Round)
		case session.ResultDraw:
			fmt.Fprintf(out, "Round %d is a draw.\n", outcome.Round)
		}
	}
}
