package engine

import (
	"errors"
	"fmt"
)

// GameState is the authoritative state of one game. It is not safe for
// concurrent use: computing legal moves applies and reverts moves on the live
// board.
type GameState struct {
	board     Board
	toMove    Color
	kings     map[Color]Square
	enPassant Square
	rights    CastleRights

	moveLog         []Move
	castleRightsLog []CastleRights
	// en passant target held before each logged move
	enPassantLog []Square

	checkmate bool
	stalemate bool

	legal      []Move
	legalFresh bool
}

// NewGameState returns the standard starting position with white to move.
func NewGameState() *GameState {
	gs, _ := NewGameStateFromBoard(newBoard(), White, AllCastleRights(), NoSquare)
	return gs
}

// NewGameStateFromBoard starts a game from an arbitrary arrangement. The board
// must hold exactly one king of each colour.
func NewGameStateFromBoard(b Board, toMove Color, rights CastleRights, enPassant Square) (*GameState, error) {
	if toMove != White && toMove != Black {
		return nil, fmt.Errorf("invalid side to move %q", toMove)
	}
	kings := make(map[Color]Square, 2)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b[r][c] == "" {
				b[r][c] = Empty
			}
			if b[r][c].Kind() != King {
				continue
			}
			color := b[r][c].Color()
			if _, dup := kings[color]; dup {
				return nil, fmt.Errorf("more than one %s king", color)
			}
			kings[color] = Square{Row: r, Col: c}
		}
	}
	if len(kings) != 2 {
		return nil, errors.New("board must hold one king of each colour")
	}
	if enPassant != NoSquare && !enPassant.Valid() {
		return nil, fmt.Errorf("invalid en passant square %v", enPassant)
	}
	return &GameState{
		board:           b,
		toMove:          toMove,
		kings:           kings,
		enPassant:       enPassant,
		rights:          rights,
		moveLog:         []Move{},
		castleRightsLog: []CastleRights{rights},
		enPassantLog:    []Square{},
	}, nil
}

func (gs *GameState) SideToMove() Color {
	return gs.toMove
}

func (gs *GameState) EnPassantTarget() Square {
	return gs.enPassant
}

func (gs *GameState) CastleRights() CastleRights {
	return gs.rights
}

// KingSquare returns the cached location of c's king.
func (gs *GameState) KingSquare(c Color) Square {
	return gs.kings[c]
}

func (gs *GameState) Checkmate() bool {
	return gs.checkmate
}

func (gs *GameState) Stalemate() bool {
	return gs.stalemate
}

// Snapshot returns a copy of the board for rendering.
func (gs *GameState) Snapshot() Board {
	return gs.board
}

// Board returns a pointer to a copy of the board, handy for attack queries.
func (gs *GameState) Board() *Board {
	b := gs.board
	return &b
}

func (gs *GameState) MoveCount() int {
	return len(gs.moveLog)
}

func (gs *GameState) MoveLog() []Move {
	return append([]Move(nil), gs.moveLog...)
}

func (gs *GameState) CastleRightsLog() []CastleRights {
	return append([]CastleRights(nil), gs.castleRightsLog...)
}

// LastMove returns the most recently applied move.
func (gs *GameState) LastMove() (Move, bool) {
	if len(gs.moveLog) == 0 {
		return Move{}, false
	}
	return gs.moveLog[len(gs.moveLog)-1], true
}

// InCheck reports whether the side to move is attacked where its king stands.
func (gs *GameState) InCheck() bool {
	return gs.board.IsSquareAttacked(gs.kings[gs.toMove], gs.toMove.Opponent())
}

// MakeMove applies m without checking it against the legal move list.
func (gs *GameState) MakeMove(m Move) {
	mover := m.PieceMoved.Color()
	gs.board.Set(m.Start, Empty)
	gs.board.Set(m.End, m.PieceMoved)
	gs.moveLog = append(gs.moveLog, m)
	gs.enPassantLog = append(gs.enPassantLog, gs.enPassant)
	gs.toMove = gs.toMove.Opponent()

	if m.PieceMoved.Kind() == King {
		gs.kings[mover] = m.End
	}
	if m.IsPawnPromotion {
		gs.board.Set(m.End, NewPiece(mover, Queen))
	}
	if m.IsEnPassant {
		// the captured pawn sits beside the start square, not on the end square
		gs.board.Set(Square{Row: m.Start.Row, Col: m.End.Col}, Empty)
	}
	if m.IsCastle {
		rookFrom, rookTo := castleRookSquares(m)
		gs.board.Set(rookTo, gs.board.At(rookFrom))
		gs.board.Set(rookFrom, Empty)
	}
	if isDoublePawnPush(m) {
		gs.enPassant = Square{Row: (m.Start.Row + m.End.Row) / 2, Col: m.End.Col}
	} else {
		gs.enPassant = NoSquare
	}

	gs.rights = gs.rights.update(m)
	gs.castleRightsLog = append(gs.castleRightsLog, gs.rights)
	gs.legalFresh = false
}

// UndoMove reverts the most recent move. It does nothing on an empty history.
func (gs *GameState) UndoMove() {
	if len(gs.moveLog) == 0 {
		return
	}
	last := len(gs.moveLog) - 1
	m := gs.moveLog[last]
	gs.moveLog = gs.moveLog[:last]

	gs.board.Set(m.Start, m.PieceMoved)
	gs.board.Set(m.End, m.PieceCaptured)
	gs.toMove = gs.toMove.Opponent()

	if m.PieceMoved.Kind() == King {
		gs.kings[m.PieceMoved.Color()] = m.Start
	}
	if m.IsEnPassant {
		gs.board.Set(m.End, Empty)
		gs.board.Set(Square{Row: m.Start.Row, Col: m.End.Col}, m.PieceCaptured)
	}
	// Restoring the logged target covers both the en passant capture (the target
	// was the capture square) and the double push (there was no target it made).
	gs.enPassant = gs.enPassantLog[last]
	gs.enPassantLog = gs.enPassantLog[:last]

	gs.castleRightsLog = gs.castleRightsLog[:len(gs.castleRightsLog)-1]
	gs.rights = gs.castleRightsLog[len(gs.castleRightsLog)-1]

	if m.IsCastle {
		rookFrom, rookTo := castleRookSquares(m)
		gs.board.Set(rookFrom, gs.board.At(rookTo))
		gs.board.Set(rookTo, Empty)
	}

	gs.checkmate = false
	gs.stalemate = false
	gs.legalFresh = false
}

func castleRookSquares(m Move) (from, to Square) {
	r := m.End.Row
	if m.End.Col-m.Start.Col == 2 {
		return Square{Row: r, Col: m.End.Col + 1}, Square{Row: r, Col: m.End.Col - 1}
	}
	return Square{Row: r, Col: m.End.Col - 2}, Square{Row: r, Col: m.End.Col + 1}
}

func isDoublePawnPush(m Move) bool {
	d := m.Start.Row - m.End.Row
	return m.PieceMoved.Kind() == Pawn && (d == 2 || d == -2)
}
