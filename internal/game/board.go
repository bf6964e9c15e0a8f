package game

import (
	"errors"
	"fmt"
)

var (
	// ErrBoardSize is returned when a board is requested with a non-positive dimension.
	ErrBoardSize = errors.New("board dimensions must be at least 1x1")
	// ErrInvalidColumn is returned for a column index outside [0, width).
	ErrInvalidColumn = errors.New("invalid column")
	// ErrColumnFull is returned when dropping into a column that has no room left.
	ErrColumnFull = errors.New("column is full")
	// ErrInvalidToken is returned when a token does not belong to either player.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	DefaultWidth  = 7
	DefaultHeight = 6

	// WinLength is the number of adjacent tokens needed to win.
	WinLength = 4
)

// column is a stack of tokens, bottom first, that only ever grows.
type column struct {
	stack    []Token
	capacity int
}

func (c *column) full() bool {
	return len(c.stack) == c.capacity
}

func (c *column) drop(t Token) int {
	c.stack = append(c.stack, t)
	return len(c.stack) - 1
}

func (c *column) match(t Token, row int) bool {
	if row >= len(c.stack) {
		return false
	}
	return c.stack[row] == t
}

// Board is a width x height Connect Four grid stored column by column.
// Rows are counted from the bottom, so the first token in a column lands on row 0.
type Board struct {
	columns []column
	width   int
	height  int
}

// NewBoard returns an empty board.
func NewBoard(width, height int) (*Board, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrBoardSize, width, height)
	}

	b := &Board{
		columns: make([]column, width),
		width:   width,
		height:  height,
	}
	for i := range b.columns {
		b.columns[i] = column{stack: make([]Token, 0, height), capacity: height}
	}
	return b, nil
}

// BoardFromColumns rebuilds a board by replaying every column from the bottom up.
func BoardFromColumns(width, height int, columns [][]Token) (*Board, error) {
	b, err := NewBoard(width, height)
	if err != nil {
		return nil, err
	}
	if len(columns) != width {
		return nil, fmt.Errorf("%w: board has %d columns, got %d", ErrInvalidColumn, width, len(columns))
	}

	for c, tokens := range columns {
		for _, t := range tokens {
			if _, err := b.Drop(c, t); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) validColumn(col int) bool {
	return col >= 0 && col < b.width
}

// IsColumnFull reports whether col has reached its capacity.
func (b *Board) IsColumnFull(col int) (bool, error) {
	if !b.validColumn(col) {
		return false, fmt.Errorf("%w: %d (width %d)", ErrInvalidColumn, col, b.width)
	}
	return b.columns[col].full(), nil
}

// Drop stacks t on top of col and returns the row it landed on.
// A failed drop leaves the board untouched.
func (b *Board) Drop(col int, t Token) (int, error) {
	if !t.Valid() {
		return -1, fmt.Errorf("%w: %d", ErrInvalidToken, int(t))
	}
	full, err := b.IsColumnFull(col)
	if err != nil {
		return -1, err
	}
	if full {
		return -1, fmt.Errorf("%w: column %d holds %d tokens", ErrColumnFull, col, b.height)
	}
	return b.columns[col].drop(t), nil
}

// IsOccupied reports whether a token has been placed at (col, row).
// Out of range coordinates are simply unoccupied, which keeps neighbour probing safe.
func (b *Board) IsOccupied(col, row int) bool {
	if col < 0 || row < 0 {
		return false
	}
	if col > b.width-1 {
		return false
	}
	return row < len(b.columns[col].stack)
}

// TokenAt returns the token at (col, row). ok is false when the cell is empty.
func (b *Board) TokenAt(col, row int) (t Token, ok bool) {
	if !b.IsOccupied(col, row) {
		return 0, false
	}
	return b.columns[col].stack[row], true
}

// ColumnHeight returns how many tokens col holds, 0 for an invalid column.
func (b *Board) ColumnHeight(col int) int {
	if !b.validColumn(col) {
		return 0
	}
	return len(b.columns[col].stack)
}

// IsBoardFull reports whether every column is full.
func (b *Board) IsBoardFull() bool {
	for i := range b.columns {
		if !b.columns[i].full() {
			return false
		}
	}
	return true
}

// CheckWin reports whether the token at (col, row) completes a horizontal run of
// at least WinLength tokens. Vertical and diagonal runs are not evaluated.
func (b *Board) CheckWin(col, row int) bool {
	token, ok := b.TokenAt(col, row)
	if !ok {
		return false
	}

	left := 0
	for c := col - 1; b.IsOccupied(c, row) && b.columns[c].match(token, row); c-- {
		left++
	}

	right := 0
	for c := col + 1; b.IsOccupied(c, row) && b.columns[c].match(token, row); c++ {
		right++
	}

	return 1+left+right >= WinLength
}

// Columns returns a copy of the grid, one bottom-first slice per column.
func (b *Board) Columns() [][]Token {
	out := make([][]Token, b.width)
	for i := range b.columns {
		out[i] = append([]Token{}, b.columns[i].stack...)
	}
	return out
}
