package engine

import "testing"

// position builds a game from "square: piece" pairs, e.g. {"e1": "wK"}.
func position(t *testing.T, pieces map[string]Piece, toMove Color, rights CastleRights) *GameState {
	t.Helper()
	b := EmptyBoard()
	for name, p := range pieces {
		sq, err := ParseSquare(name)
		if err != nil {
			t.Fatalf("bad square %q: %v", name, err)
		}
		b.Set(sq, p)
	}
	gs, err := NewGameStateFromBoard(b, toMove, rights, NoSquare)
	if err != nil {
		t.Fatalf("NewGameStateFromBoard: %v", err)
	}
	return gs
}

func sq(t *testing.T, name string) Square {
	t.Helper()
	s, err := ParseSquare(name)
	if err != nil {
		t.Fatalf("bad square %q: %v", name, err)
	}
	return s
}

func play(t *testing.T, gs *GameState, moves ...string) {
	t.Helper()
	for _, uci := range moves {
		if _, ok, err := gs.ApplyUCI(uci); err != nil || !ok {
			t.Fatalf("move %s rejected (err=%v) after %v", uci, err, notations(gs.MoveLog()))
		}
	}
}

func findMove(moves []Move, uci string) (Move, bool) {
	for _, m := range moves {
		if m.Start.String()+m.End.String() == uci[:4] {
			return m, true
		}
	}
	return Move{}, false
}

func notations(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.Notation())
	}
	return out
}

type stateSnapshot struct {
	board      Board
	toMove     Color
	enPassant  Square
	rights     CastleRights
	whiteKing  Square
	blackKing  Square
	moveCount  int
	rightsLogs int
}

func snapshotOf(gs *GameState) stateSnapshot {
	return stateSnapshot{
		board:      gs.Snapshot(),
		toMove:     gs.SideToMove(),
		enPassant:  gs.EnPassantTarget(),
		rights:     gs.CastleRights(),
		whiteKing:  gs.KingSquare(White),
		blackKing:  gs.KingSquare(Black),
		moveCount:  gs.MoveCount(),
		rightsLogs: len(gs.CastleRightsLog()),
	}
}
