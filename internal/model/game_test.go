package model

import (
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/store"
)

func seatedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1", time.Minute)
	if c, err := g.AddPlayer("alice"); err != nil || c != PlayerColorWhite {
		t.Fatalf("alice seat = %v, %v", c, err)
	}
	if c, err := g.AddPlayer("bob"); err != nil || c != PlayerColorBlack {
		t.Fatalf("bob seat = %v, %v", c, err)
	}
	return g
}

func TestAddPlayer(t *testing.T) {
	g := seatedGame(t)
	if c, err := g.AddPlayer("alice"); err != nil || c != PlayerColorWhite {
		t.Fatalf("rejoin = %v, %v", c, err)
	}
	if _, err := g.AddPlayer("carol"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("err = %v, want ErrGameFull", err)
	}
	if _, err := g.AddPlayer(""); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("err = %v, want ErrNotPlayer", err)
	}
	if g.CanSpectate() {
		t.Fatal("full game reports a free seat")
	}
}

func TestMakeMoveEnforcesTurn(t *testing.T) {
	g := seatedGame(t)

	if err := g.MakeMove("bob", WSMove{From: "e7", To: "e5"}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
	if err := g.MakeMove("carol", WSMove{From: "e2", To: "e4"}); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("err = %v, want ErrNotPlayer", err)
	}
	if err := g.MakeMove("alice", WSMove{From: "e2", To: "e5"}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if err := g.MakeMove("alice", WSMove{From: "zz", To: "e4"}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if err := g.MakeMove("alice", WSMove{From: "e2", To: "e4"}); err != nil {
		t.Fatalf("e2e4: %v", err)
	}

	state := g.GetState()
	if state.ToMove != "black" {
		t.Fatalf("toMove = %s", state.ToMove)
	}
	if state.LastMove == nil || *state.LastMove != (SimpleMove{From: "e2", To: "e4"}) {
		t.Fatalf("lastMove = %v", state.LastMove)
	}
	if state.EnPassantTarget == nil || *state.EnPassantTarget != "e3" {
		t.Fatalf("enPassantTarget = %v", state.EnPassantTarget)
	}
	if len(state.LegalMoves) != 20 {
		t.Fatalf("black has %d moves, want 20", len(state.LegalMoves))
	}
	if state.Board.Board[4][4] != "wP" || state.Board.Board[6][4] != "--" {
		t.Fatalf("board not updated: %v", state.Board.Board)
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	g := seatedGame(t)
	moves := []WSMove{
		{"e2", "e4"}, {"e7", "e5"}, {"f1", "c4"}, {"b8", "c6"}, {"d1", "h5"}, {"g8", "f6"}, {"h5", "f7"},
	}
	players := []string{"alice", "bob"}
	for i, m := range moves {
		if err := g.MakeMove(players[i%2], m); err != nil {
			t.Fatalf("%v: %v", m, err)
		}
	}
	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != ResolveCheckmate || !state.IsCheck {
		t.Fatalf("resolve = %v check = %v", state.Resolve, state.IsCheck)
	}
	if len(state.LegalMoves) != 0 {
		t.Fatalf("legal moves after mate: %v", state.LegalMoves)
	}
	if err := g.MakeMove("bob", WSMove{From: "a7", To: "a6"}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("err = %v, want ErrGameOver", err)
	}
	if len(state.MoveHistory) != 4 || state.MoveHistory[3].BlackPly != nil {
		t.Fatalf("history = %+v", state.MoveHistory)
	}
	if got := state.CapturedPieces.White; len(got) != 1 || got[0] != "bP" {
		t.Fatalf("white captured %v", got)
	}
	if rec := g.Record(); rec.Status != ResolveCheckmate || len(rec.Moves) != 7 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestUndo(t *testing.T) {
	g := seatedGame(t)
	if err := g.Undo("alice"); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("err = %v, want ErrNothingToUndo", err)
	}
	if err := g.MakeMove("alice", WSMove{From: "g1", To: "f3"}); err != nil {
		t.Fatal(err)
	}
	if err := g.Undo("carol"); !errors.Is(err, ErrNotPlayer) {
		t.Fatalf("err = %v, want ErrNotPlayer", err)
	}
	if err := g.Undo("bob"); err != nil {
		t.Fatalf("undo: %v", err)
	}
	state := g.GetState()
	if state.ToMove != "white" || state.LastMove != nil || len(state.MoveHistory) != 0 {
		t.Fatalf("undo left %+v", state)
	}
	if !g.whiteClock.IsRunning() || g.blackClock.IsRunning() {
		t.Fatal("clocks not handed back to white")
	}
}

func TestCastleShowsRookMove(t *testing.T) {
	g := seatedGame(t)
	moves := []WSMove{{"e2", "e4"}, {"e7", "e5"}, {"g1", "f3"}, {"b8", "c6"}, {"f1", "c4"}, {"g8", "f6"}, {"e1", "g1"}}
	players := []string{"alice", "bob"}
	for i, m := range moves {
		if err := g.MakeMove(players[i%2], m); err != nil {
			t.Fatalf("%v: %v", m, err)
		}
	}
	state := g.GetState()
	ply := state.MoveHistory[3].WhitePly
	if ply.CastleRookMove == nil || *ply.CastleRookMove != (CastleRookMove{From: "h1", To: "f1"}) {
		t.Fatalf("castle ply = %+v", ply)
	}
	if state.CastleRights.WhiteKingSide || !state.CastleRights.BlackKingSide {
		t.Fatalf("rights = %+v", state.CastleRights)
	}
	if state.Board.WhiteKingPosition != "g1" {
		t.Fatalf("king at %s", state.Board.WhiteKingPosition)
	}
}

func TestLegalMovesFrom(t *testing.T) {
	g := seatedGame(t)
	moves, err := g.LegalMovesFrom("b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 {
		t.Fatalf("b1 moves = %v", moves)
	}
	all, err := g.LegalMovesFrom("")
	if err != nil || len(all) != 20 {
		t.Fatalf("all moves = %d, %v", len(all), err)
	}
	if _, err := g.LegalMovesFrom("k9"); err == nil {
		t.Fatal("bad square accepted")
	}
}

func TestRestoreGame(t *testing.T) {
	g := seatedGame(t)
	for i, m := range []WSMove{{"d2", "d4"}, {"d7", "d5"}, {"c2", "c4"}} {
		if err := g.MakeMove([]string{"alice", "bob"}[i%2], m); err != nil {
			t.Fatal(err)
		}
	}
	restored, err := RestoreGame(g.Record(), time.Minute)
	if err != nil {
		t.Fatalf("RestoreGame: %v", err)
	}
	a, b := g.GetState(), restored.GetState()
	if a.Board.Board != b.Board.Board || a.ToMove != b.ToMove || len(b.MoveHistory) != 2 {
		t.Fatalf("restored state differs: %+v", b)
	}
	if !restored.IsPlayerInGame("alice") || !restored.IsPlayerInGame("bob") {
		t.Fatal("seats not restored")
	}
}

func TestColorOf(t *testing.T) {
	g := seatedGame(t)
	if c, ok := g.ColorOf("bob"); !ok || c != PlayerColorBlack {
		t.Fatalf("bob = %v %v", c, ok)
	}
	if _, ok := g.ColorOf("carol"); ok {
		t.Fatal("carol has a seat")
	}
}

func TestBroadcastSkipsStaleState(t *testing.T) {
	g := seatedGame(t)
	state := g.GetState()
	if !g.broadcastState(state, 2) {
		t.Fatal("current state not sent")
	}
	if g.broadcastState(state, 1) {
		t.Fatal("older state sent after a newer one")
	}
	if !g.broadcastState(state, 2) {
		t.Fatal("same version should still go out, new sockets need it")
	}
}

func TestMovesBumpVersion(t *testing.T) {
	g := seatedGame(t)
	if err := g.MakeMove("alice", WSMove{From: "e2", To: "e4"}); err != nil {
		t.Fatal(err)
	}
	if err := g.Undo("alice"); err != nil {
		t.Fatal(err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.version != 2 {
		t.Fatalf("version = %d, want 2", g.version)
	}
}

func TestSaveSeesCurrentRecord(t *testing.T) {
	g := seatedGame(t)
	if err := g.MakeMove("alice", WSMove{From: "d2", To: "d4"}); err != nil {
		t.Fatal(err)
	}
	var saved store.Record
	if err := g.Save(func(rec store.Record) error {
		saved = rec
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(saved.Moves) != 1 || saved.Moves[0] != "d2d4" {
		t.Fatalf("saved %+v", saved)
	}
}
