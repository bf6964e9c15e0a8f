package game

// Token identifies which of the two players owns a cell.
type Token int

const (
	PlayerOne Token = 0
	PlayerTwo Token = 1
)

// Valid reports whether t belongs to one of the two players.
func (t Token) Valid() bool {
	return t == PlayerOne || t == PlayerTwo
}

// Opponent returns the other player's token.
func (t Token) Opponent() Token {
	if t == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

func (t Token) String() string {
	switch t {
	case PlayerOne:
		return "red"
	case PlayerTwo:
		return "yellow"
	default:
		return "unknown"
	}
}
