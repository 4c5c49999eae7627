package engine

import (
	"fmt"
	"strings"
)

type Color byte

const (
	NoColor Color = '-'
	White   Color = 'w'
	Black   Color = 'b'
)

func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return ""
}

type Kind byte

const (
	NoKind Kind = '-'
	Pawn   Kind = 'P'
	Knight Kind = 'N'
	Bishop Kind = 'B'
	Rook   Kind = 'R'
	Queen  Kind = 'Q'
	King   Kind = 'K'
)

// Piece is the two character code of a board occupant, e.g. "wP" or "bK".
// Empty is the "no piece" sentinel.
type Piece string

const Empty Piece = "--"

func NewPiece(c Color, k Kind) Piece {
	return Piece([]byte{byte(c), byte(k)})
}

func (p Piece) Color() Color {
	if len(p) != 2 || p == Empty {
		return NoColor
	}
	return Color(p[0])
}

func (p Piece) Kind() Kind {
	if len(p) != 2 || p == Empty {
		return NoKind
	}
	return Kind(p[1])
}

func (p Piece) IsEmpty() bool {
	return p == Empty || p == ""
}

// Square is a (row, column) pair. Row 0 is black's back rank, row 7 white's.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoSquare marks an absent en passant target.
var NoSquare = Square{Row: -1, Col: -1}

func (s Square) Valid() bool {
	return boundaryCheck(s.Row, s.Col)
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, 8-s.Row)
}

func (s Square) offset(dRow, dCol int) Square {
	return Square{Row: s.Row + dRow, Col: s.Col + dCol}
}

// ParseSquare converts file+rank ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return Square{Row: 8 - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

func boundaryCheck(row, col int) bool {
	return row >= 0 && row < 8 && col >= 0 && col < 8
}

// Board is the 8x8 grid indexed [row][col].
type Board [8][8]Piece

func (b *Board) At(sq Square) Piece {
	return b[sq.Row][sq.Col]
}

func (b *Board) Set(sq Square, p Piece) {
	b[sq.Row][sq.Col] = p
}

func (b *Board) isEmpty(row, col int) bool {
	return b[row][col].IsEmpty()
}

// FindKing scans the board for c's king. Game state keeps a cached copy; this is
// used to seed and verify that cache.
func (b *Board) FindKing(c Color) (Square, bool) {
	king := NewPiece(c, King)
	for r := 0; r < 8; r++ {
		for col := 0; col < 8; col++ {
			if b[r][col] == king {
				return Square{Row: r, Col: col}, true
			}
		}
	}
	return NoSquare, false
}

func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(string(b[r][c]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// EmptyBoard returns a board with every square set to Empty.
func EmptyBoard() Board {
	var b Board
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			b[r][c] = Empty
		}
	}
	return b
}

func newBoard() Board {
	b := EmptyBoard()
	backRank := []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for c, k := range backRank {
		b[0][c] = NewPiece(Black, k)
		b[7][c] = NewPiece(White, k)
	}
	for c := 0; c < 8; c++ {
		b[1][c] = NewPiece(Black, Pawn)
		b[6][c] = NewPiece(White, Pawn)
	}
	return b
}
