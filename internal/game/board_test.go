package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(DefaultWidth, DefaultHeight)
	require.NoError(t, err)
	return b
}

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       error
	}{
		{name: "default size", width: 7, height: 6},
		{name: "single cell", width: 1, height: 1},
		{name: "zero width", width: 0, height: 6, wantErr: ErrBoardSize},
		{name: "negative height", width: 7, height: -1, wantErr: ErrBoardSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard(tt.width, tt.height)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.width, b.Width())
			assert.Equal(t, tt.height, b.Height())
			assert.False(t, b.IsBoardFull())
		})
	}
}

func TestDropReturnsIncreasingHeights(t *testing.T) {
	b := newTestBoard(t)

	for want := 0; want < b.Height(); want++ {
		assert.Equal(t, want, b.ColumnHeight(2))
		row, err := b.Drop(2, PlayerOne)
		require.NoError(t, err)
		assert.Equal(t, want, row)
	}

	full, err := b.IsColumnFull(2)
	require.NoError(t, err)
	assert.True(t, full)
}

func TestDropIntoFullColumnFailsWithoutMutation(t *testing.T) {
	b := newTestBoard(t)
	for i := 0; i < b.Height(); i++ {
		_, err := b.Drop(0, Token(i%2))
		require.NoError(t, err)
	}
	before := b.Columns()

	row, err := b.Drop(0, PlayerTwo)
	assert.ErrorIs(t, err, ErrColumnFull)
	assert.Equal(t, -1, row)
	assert.Equal(t, before, b.Columns())
	assert.Equal(t, b.Height(), b.ColumnHeight(0))
}

func TestDropRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		col     int
		token   Token
		wantErr error
	}{
		{name: "negative column", col: -1, token: PlayerOne, wantErr: ErrInvalidColumn},
		{name: "column equal to width", col: DefaultWidth, token: PlayerOne, wantErr: ErrInvalidColumn},
		{name: "unknown token", col: 0, token: Token(2), wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t)
			_, err := b.Drop(tt.col, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			for c := 0; c < b.Width(); c++ {
				assert.Zero(t, b.ColumnHeight(c))
			}
		})
	}
}

func TestIsColumnFullInvalidColumn(t *testing.T) {
	b := newTestBoard(t)

	_, err := b.IsColumnFull(-1)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = b.IsColumnFull(b.Width())
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestIsOccupied(t *testing.T) {
	b := newTestBoard(t)
	for i := 0; i < 3; i++ {
		_, err := b.Drop(4, PlayerTwo)
		require.NoError(t, err)
	}

	for r := 0; r < b.Height(); r++ {
		assert.Equal(t, r < 3, b.IsOccupied(4, r), "row %d", r)
	}

	probes := []struct{ col, row int }{
		{-1, 0}, {0, -1}, {b.Width(), 0}, {4, b.Height()}, {100, 100},
	}
	for _, p := range probes {
		assert.False(t, b.IsOccupied(p.col, p.row), "(%d,%d)", p.col, p.row)
	}
}

func TestIsBoardFull(t *testing.T) {
	b, err := NewBoard(3, 2)
	require.NoError(t, err)

	for c := 0; c < b.Width(); c++ {
		assert.False(t, b.IsBoardFull())
		for r := 0; r < b.Height(); r++ {
			_, err := b.Drop(c, Token((c+r)%2))
			require.NoError(t, err)
		}
	}
	assert.True(t, b.IsBoardFull())
}

func TestCheckWin(t *testing.T) {
	tests := []struct {
		name     string
		drops    [][2]int // column, token
		col, row int
		want     bool
	}{
		{
			name:  "four in a row ending on the right",
			drops: [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
			col:   3, row: 0,
			want: true,
		},
		{
			name:  "four in a row completed in the middle",
			drops: [][2]int{{2, 1}, {3, 1}, {5, 1}, {4, 1}},
			col:   4, row: 0,
			want: true,
		},
		{
			name:  "five in a row",
			drops: [][2]int{{0, 0}, {1, 0}, {3, 0}, {4, 0}, {2, 0}},
			col:   2, row: 0,
			want: true,
		},
		{
			name:  "three in a row",
			drops: [][2]int{{0, 0}, {1, 0}, {2, 0}},
			col:   2, row: 0,
			want: false,
		},
		{
			name:  "run broken by opponent",
			drops: [][2]int{{0, 0}, {1, 0}, {2, 1}, {3, 0}, {4, 0}},
			col:   4, row: 0,
			want: false,
		},
		{
			name:  "run on an upper row",
			drops: [][2]int{{0, 1}, {1, 1}, {2, 1}, {3, 1}, {0, 0}, {1, 0}, {2, 0}, {3, 0}},
			col:   3, row: 1,
			want: true,
		},
		{
			name:  "four stacked vertically is not evaluated",
			drops: [][2]int{{0, 0}, {0, 0}, {0, 0}, {0, 0}},
			col:   0, row: 3,
			want: false,
		},
		{
			name: "diagonal is not evaluated",
			drops: [][2]int{
				{0, 0},
				{1, 1}, {1, 0},
				{2, 1}, {2, 1}, {2, 0},
				{3, 1}, {3, 1}, {3, 1}, {3, 0},
			},
			col: 3, row: 3,
			want: false,
		},
		{
			name:  "empty cell",
			drops: nil,
			col:   0, row: 0,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t)
			for _, d := range tt.drops {
				_, err := b.Drop(d[0], Token(d[1]))
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, b.CheckWin(tt.col, tt.row))
		})
	}
}

func TestHorizontalWinScenario(t *testing.T) {
	b := newTestBoard(t)

	for c := 0; c < 4; c++ {
		row, err := b.Drop(c, PlayerOne)
		require.NoError(t, err)
		assert.Zero(t, row)
	}

	assert.True(t, b.CheckWin(3, 0))
	assert.False(t, b.IsBoardFull())
	assert.True(t, b.IsOccupied(0, 0))
	assert.False(t, b.IsOccupied(0, 1))
}

func TestFillBoardWithoutWinIsDraw(t *testing.T) {
	b := newTestBoard(t)

	// Alternate pairs of columns so no row ever holds four of a kind.
	for c := 0; c < b.Width(); c++ {
		for r := 0; r < b.Height(); r++ {
			token := Token(((c / 2) + r) % 2)
			row, err := b.Drop(c, token)
			require.NoError(t, err)
			assert.False(t, b.CheckWin(c, row), "unexpected win at (%d,%d)", c, row)
		}
	}

	assert.True(t, b.IsBoardFull())
	for c := 0; c < b.Width(); c++ {
		full, err := b.IsColumnFull(c)
		require.NoError(t, err)
		assert.True(t, full)
	}
}

func TestBoardFromColumns(t *testing.T) {
	b := newTestBoard(t)
	_, _ = b.Drop(1, PlayerOne)
	_, _ = b.Drop(1, PlayerTwo)
	_, _ = b.Drop(6, PlayerTwo)

	restored, err := BoardFromColumns(b.Width(), b.Height(), b.Columns())
	require.NoError(t, err)
	assert.Equal(t, b.Columns(), restored.Columns())

	tok, ok := restored.TokenAt(1, 1)
	assert.True(t, ok)
	assert.Equal(t, PlayerTwo, tok)

	t.Run("overfull column", func(t *testing.T) {
		cols := make([][]Token, 2)
		cols[0] = []Token{PlayerOne, PlayerOne, PlayerOne}
		_, err := BoardFromColumns(2, 2, cols)
		assert.ErrorIs(t, err, ErrColumnFull)
	})

	t.Run("width mismatch", func(t *testing.T) {
		_, err := BoardFromColumns(3, 2, make([][]Token, 2))
		assert.ErrorIs(t, err, ErrInvalidColumn)
	})
}

func TestColumnsIsACopy(t *testing.T) {
	b := newTestBoard(t)
	_, _ = b.Drop(0, PlayerOne)

	cols := b.Columns()
	cols[0][0] = PlayerTwo

	tok, _ := b.TokenAt(0, 0)
	assert.Equal(t, PlayerOne, tok)
}
