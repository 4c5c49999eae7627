package engine

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(gs *GameState, depth int) int {
	if depth == 0 {
		return 1
	}
	moves := gs.LegalMoves()
	if depth == 1 {
		return len(moves)
	}
	nodes := 0
	for _, m := range moves {
		gs.MakeMove(m)
		nodes += Perft(gs, depth-1)
		gs.UndoMove()
	}
	return nodes
}
