package engine

// IsSquareAttacked reports whether any piece of colour by attacks sq. It walks
// outward from sq, so it never touches game state and needs no side to move.
// On an occupied square this agrees with threatenedSquares; on an empty one a
// pawn's diagonal counts and its push does not.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	for _, dir := range rookDirs {
		if b.slideHits(sq, dir, by, Rook) {
			return true
		}
	}
	for _, dir := range bishopDirs {
		if b.slideHits(sq, dir, by, Bishop) {
			return true
		}
	}
	if b.stepHits(sq, knightDirs, NewPiece(by, Knight)) {
		return true
	}
	if b.stepHits(sq, kingDirs, NewPiece(by, King)) {
		return true
	}
	// A white pawn attacking sq stands one row below it, a black pawn one row above.
	pawnRow := 1
	if by == Black {
		pawnRow = -1
	}
	return b.stepHits(sq, []Square{{Row: pawnRow, Col: -1}, {Row: pawnRow, Col: 1}}, NewPiece(by, Pawn))
}

func (b *Board) slideHits(sq, dir Square, by Color, slider Kind) bool {
	to := sq.offset(dir.Row, dir.Col)
	for to.Valid() {
		p := b.At(to)
		if !p.IsEmpty() {
			return p.Color() == by && (p.Kind() == slider || p.Kind() == Queen)
		}
		to = to.offset(dir.Row, dir.Col)
	}
	return false
}

func (b *Board) stepHits(sq Square, dirs []Square, attacker Piece) bool {
	for _, dir := range dirs {
		to := sq.offset(dir.Row, dir.Col)
		if to.Valid() && b.At(to) == attacker {
			return true
		}
	}
	return false
}

// threatenedSquares is the set of destinations of every pseudo-legal move by
// colour by. A pawn threatens the square ahead it could push to; an empty
// diagonal beside it is not threatened.
func (b *Board) threatenedSquares(by Color) map[Square]bool {
	threatened := make(map[Square]bool)
	for _, m := range PseudoLegalMoves(b, by, NoSquare) {
		threatened[m.End] = true
	}
	return threatened
}
