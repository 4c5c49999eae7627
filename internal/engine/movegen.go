package engine

var (
	rookDirs   = []Square{{Row: -1, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: -1}, {Row: 0, Col: 1}}
	bishopDirs = []Square{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: -1}, {Row: -1, Col: 1}}
	knightDirs = []Square{{Row: 1, Col: -2}, {Row: 2, Col: -1}, {Row: 2, Col: 1}, {Row: 1, Col: 2}, {Row: -1, Col: -2}, {Row: -2, Col: -1}, {Row: -2, Col: 1}, {Row: -1, Col: 2}}
	kingDirs   = []Square{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 0, Col: 1}, {Row: -1, Col: 1}, {Row: -1, Col: 0}, {Row: -1, Col: -1}, {Row: 0, Col: -1}, {Row: 1, Col: -1}}
)

// PseudoLegalMoves returns every move side could make on b ignoring whether it
// leaves its own king attacked. Castling is not included.
func PseudoLegalMoves(b *Board, side Color, enPassant Square) []Move {
	moves := make([]Move, 0, 48)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece.Color() != side {
				continue
			}
			sq := Square{Row: r, Col: c}
			switch piece.Kind() {
			case Pawn:
				moves = b.appendPseudoPawnMoves(moves, sq, enPassant)
			case Knight:
				moves = b.appendStepMoves(moves, sq, knightDirs)
			case Bishop:
				moves = b.appendSlideMoves(moves, sq, bishopDirs)
			case Rook:
				moves = b.appendSlideMoves(moves, sq, rookDirs)
			case Queen:
				moves = b.appendSlideMoves(moves, sq, bishopDirs)
				moves = b.appendSlideMoves(moves, sq, rookDirs)
			case King:
				moves = b.appendStepMoves(moves, sq, kingDirs)
			}
		}
	}
	return moves
}

func (b *Board) appendPseudoPawnMoves(moves []Move, from Square, enPassant Square) []Move {
	color := b.At(from).Color()
	enemy := color.Opponent()
	dir := -1
	if color == Black {
		dir = 1
	}
	// Check move forward 1
	one := from.offset(dir, 0)
	if one.Valid() && b.At(one).IsEmpty() {
		moves = append(moves, NewMove(from, one, b))
		// Check move forward 2 from the home rank
		two := from.offset(2*dir, 0)
		if from.Row == pawnHomeRow(color) && b.At(two).IsEmpty() {
			moves = append(moves, NewMove(from, two, b))
		}
	}
	// Check captures, including en passant
	for _, dc := range []int{-1, 1} {
		to := from.offset(dir, dc)
		if !to.Valid() {
			continue
		}
		if b.At(to).Color() == enemy {
			moves = append(moves, NewMove(from, to, b))
		} else if to == enPassant && b.At(from.offset(0, dc)) == NewPiece(enemy, Pawn) {
			moves = append(moves, newEnPassantMove(from, to, b))
		}
	}
	return moves
}

func (b *Board) appendSlideMoves(moves []Move, from Square, dirs []Square) []Move {
	color := b.At(from).Color()
	for _, dir := range dirs {
		to := from.offset(dir.Row, dir.Col)
		for to.Valid() {
			target := b.At(to)
			if target.IsEmpty() {
				moves = append(moves, NewMove(from, to, b))
			} else if target.Color() != color {
				moves = append(moves, NewMove(from, to, b))
				break
			} else {
				break
			}
			to = to.offset(dir.Row, dir.Col)
		}
	}
	return moves
}

func (b *Board) appendStepMoves(moves []Move, from Square, dirs []Square) []Move {
	color := b.At(from).Color()
	for _, dir := range dirs {
		to := from.offset(dir.Row, dir.Col)
		if to.Valid() && b.At(to).Color() != color {
			moves = append(moves, NewMove(from, to, b))
		}
	}
	return moves
}

// castleMoves returns the castle candidates for side. Nothing is produced while
// the king is in check or away from its starting square. The squares the king
// crosses and lands on must not be the destination of any opponent
// pseudo-legal move.
func castleMoves(b *Board, side Color, king Square, rights CastleRights) []Move {
	moves := []Move{}
	if king != (Square{Row: backRow(side), Col: 4}) {
		return moves
	}
	if !rights.KingSide(side) && !rights.QueenSide(side) {
		return moves
	}
	if b.IsSquareAttacked(king, side.Opponent()) {
		return moves
	}
	threatened := b.threatenedSquares(side.Opponent())
	r, c := king.Row, king.Col
	if rights.KingSide(side) {
		if b.isEmpty(r, c+1) && b.isEmpty(r, c+2) &&
			!threatened[Square{Row: r, Col: c + 1}] &&
			!threatened[Square{Row: r, Col: c + 2}] {
			moves = append(moves, newCastleMove(king, Square{Row: r, Col: c + 2}, b))
		}
	}
	if rights.QueenSide(side) {
		if b.isEmpty(r, c-1) && b.isEmpty(r, c-2) && b.isEmpty(r, c-3) &&
			!threatened[Square{Row: r, Col: c - 1}] &&
			!threatened[Square{Row: r, Col: c - 2}] {
			moves = append(moves, newCastleMove(king, Square{Row: r, Col: c - 2}, b))
		}
	}
	return moves
}
