package engine

import "golang.org/x/exp/slices"

// LegalMoves returns every legal move for the side to move and refreshes the
// checkmate and stalemate flags. The result is cached until the next make or
// undo; callers get their own copy.
func (gs *GameState) LegalMoves() []Move {
	if !gs.legalFresh {
		gs.legal = gs.computeLegalMoves()
		gs.legalFresh = true
	}
	return append([]Move(nil), gs.legal...)
}

func (gs *GameState) computeLegalMoves() []Move {
	mover := gs.toMove
	candidates := PseudoLegalMoves(&gs.board, mover, gs.enPassant)
	candidates = append(candidates, castleMoves(&gs.board, mover, gs.kings[mover], gs.rights)...)

	legalMoves := make([]Move, 0, len(candidates))
	for _, move := range candidates {
		// execute temp move
		gs.MakeMove(move)
		// check if the mover's king is attacked
		if !gs.board.IsSquareAttacked(gs.kings[mover], mover.Opponent()) {
			legalMoves = append(legalMoves, move)
		}
		// revert temp move
		gs.UndoMove()
	}

	gs.checkmate = false
	gs.stalemate = false
	if len(legalMoves) == 0 {
		if gs.InCheck() {
			gs.checkmate = true
		} else {
			gs.stalemate = true
		}
	}
	return legalMoves
}

// ApplyMove plays candidate if its coordinates match a legal move. The engine's
// own legal move is applied, so the candidate's flags are ignored. When no legal
// move matches nothing changes and ok is false.
func (gs *GameState) ApplyMove(candidate Move) (Move, bool) {
	legalMoves := gs.LegalMoves()
	i := slices.IndexFunc(legalMoves, candidate.Equal)
	if i < 0 {
		return Move{}, false
	}
	move := legalMoves[i]
	gs.MakeMove(move)
	return move, true
}

// ApplyUCI parses a coordinate move against the live board and applies it.
func (gs *GameState) ApplyUCI(s string) (Move, bool, error) {
	candidate, err := ParseUCI(s, &gs.board)
	if err != nil {
		return Move{}, false, err
	}
	move, ok := gs.ApplyMove(candidate)
	return move, ok, nil
}

// LegalMovesFrom filters the legal moves to those starting on sq.
func (gs *GameState) LegalMovesFrom(sq Square) []Move {
	moves := []Move{}
	for _, m := range gs.LegalMoves() {
		if m.Start == sq {
			moves = append(moves, m)
		}
	}
	return moves
}

// IsGameOver refreshes the legal move list and reports checkmate or stalemate.
func (gs *GameState) IsGameOver() bool {
	gs.LegalMoves()
	return gs.checkmate || gs.stalemate
}
