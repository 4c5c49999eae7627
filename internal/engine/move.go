package engine

import "fmt"

type Move struct {
	Start           Square `json:"start"`
	End             Square `json:"end"`
	PieceMoved      Piece  `json:"pieceMoved"`
	PieceCaptured   Piece  `json:"pieceCaptured"`
	IsPawnPromotion bool   `json:"isPawnPromotion"`
	IsEnPassant     bool   `json:"isEnPassant"`
	IsCastle        bool   `json:"isCastle"`
}

// NewMove builds a move from two squares and the board they refer to. This is
// how a front end turns a pair of selected squares into a candidate move.
func NewMove(start, end Square, board *Board) Move {
	moved := board.At(start)
	m := Move{
		Start:         start,
		End:           end,
		PieceMoved:    moved,
		PieceCaptured: board.At(end),
	}
	m.IsPawnPromotion = moved.Kind() == Pawn && end.Row == promotionRow(moved.Color())
	return m
}

func newEnPassantMove(start, end Square, board *Board) Move {
	m := NewMove(start, end, board)
	m.IsEnPassant = true
	m.PieceCaptured = NewPiece(m.PieceMoved.Color().Opponent(), Pawn)
	return m
}

func newCastleMove(start, end Square, board *Board) Move {
	m := NewMove(start, end, board)
	m.IsCastle = true
	return m
}

// ID is the equality key. Only coordinates take part; the flags do not.
func (m Move) ID() int {
	return m.Start.Row*1000 + m.Start.Col*100 + m.End.Row*10 + m.End.Col
}

func (m Move) Equal(other Move) bool {
	return m.ID() == other.ID()
}

func (m Move) IsCapture() bool {
	return !m.PieceCaptured.IsEmpty()
}

// Notation is the piece code followed by the start and end squares, e.g. "wPe2e4".
func (m Move) Notation() string {
	return string(m.PieceMoved) + m.Start.String() + m.End.String()
}

// UCI is the coordinate form used on the wire, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	s := m.Start.String() + m.End.String()
	if m.IsPawnPromotion {
		s += "q"
	}
	return s
}

func (m Move) String() string {
	return fmt.Sprintf("(%d, %d) -> (%d, %d)", m.Start.Row, m.Start.Col, m.End.Row, m.End.Col)
}

// ParseUCI reads "e2e4" (an optional promotion letter is accepted and ignored,
// promotion is always to a queen) against board.
func ParseUCI(s string, board *Board) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid move %q", s)
	}
	start, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	end, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return NewMove(start, end, board), nil
}

func promotionRow(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func pawnHomeRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func backRow(c Color) int {
	if c == White {
		return 7
	}
	return 0
}
