package board

import (
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color: %q", s)
}

type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// letter is the lowercase FEN/UCI letter of the kind.
func (k Kind) letter() byte {
	switch k {
	case Pawn:
		return 'p'
	case Knight:
		return 'n'
	case Bishop:
		return 'b'
	case Rook:
		return 'r'
	case Queen:
		return 'q'
	case King:
		return 'k'
	}
	return 0
}

func kindFromLetter(b byte) Kind {
	switch b {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	}
	return NoKind
}

type Piece struct {
	Kind  Kind
	Color Color
}

var NoPiece = Piece{}

func (p Piece) IsZero() bool { return p.Kind == NoKind }

func (p Piece) String() string {
	if p.IsZero() {
		return "-"
	}
	return p.Color.String() + " " + p.Kind.String()
}

// Square indexes the board as file + rank*8 with a1 = 0 and h8 = 63.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(file + rank*8)
}

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }
func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	f := int(s[0]) - 'a'
	r := int(s[1]) - '1'
	sq := NewSquare(f, r)
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

type CastleSide uint8

const (
	KingSide CastleSide = iota
	QueenSide
)

// Move is a value produced by a Board's LegalMoves. Captured is Pawn for en passant.
type Move struct {
	From      Square
	To        Square
	Piece     Kind
	Captured  Kind
	Castle    bool
	EnPassant bool
	Promo     Kind
}

var NoMove = Move{From: NoSquare, To: NoSquare}

func (m Move) IsNone() bool      { return m.From == NoSquare || m.To == NoSquare }
func (m Move) IsCapture() bool   { return m.Captured != NoKind }
func (m Move) IsPromotion() bool { return m.Promo != NoKind }

func (m Move) UCI() string {
	if m.IsNone() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promo != NoKind {
		s += string(m.Promo.letter())
	}
	return s
}

func (m Move) String() string { return m.UCI() }
