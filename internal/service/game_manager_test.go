package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/store"
)

func newTestManager(t *testing.T) (*GameManager, *store.Store) {
	t.Helper()
	archive, err := store.Open("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	gm := NewGameManager(archive, time.Minute, time.Hour)
	t.Cleanup(func() {
		gm.Close()
		archive.Close()
	})
	return gm, archive
}

func TestMovesArePersisted(t *testing.T) {
	gm, archive := newTestManager(t)
	if err := gm.CreateGame("g1"); err != nil {
		t.Fatal(err)
	}
	if err := gm.CreateGame("g1"); !errors.Is(err, ErrGameExists) {
		t.Fatalf("err = %v, want ErrGameExists", err)
	}
	for _, id := range []string{"alice", "bob"} {
		if _, err := gm.AddPlayerToGame("g1", id); err != nil {
			t.Fatal(err)
		}
	}
	if err := gm.MakeMove("g1", "alice", model.WSMove{From: "e2", To: "e4"}); err != nil {
		t.Fatal(err)
	}
	if err := gm.MakeMove("g1", "bob", model.WSMove{From: "c7", To: "c5"}); err != nil {
		t.Fatal(err)
	}

	rec, err := archive.LoadGame("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Moves) != 2 || rec.Moves[1] != "c7c5" || rec.White != "alice" || rec.Black != "bob" {
		t.Fatalf("record = %+v", rec)
	}

	if err := gm.Undo("g1", "alice"); err != nil {
		t.Fatal(err)
	}
	rec, _ = archive.LoadGame("g1")
	if len(rec.Moves) != 1 {
		t.Fatalf("undo not persisted: %v", rec.Moves)
	}
}

func TestGetGameRestoresFromArchive(t *testing.T) {
	gm, archive := newTestManager(t)
	rec := store.Record{ID: "old", White: "alice", Black: "bob", Moves: []string{"d2d4", "g8f6"}}
	if err := archive.SaveGame(rec); err != nil {
		t.Fatal(err)
	}

	state, err := gm.GetGameState("old")
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	if state.ToMove != "white" || len(state.MoveHistory) != 1 {
		t.Fatalf("restored state = %+v", state)
	}
	if err := gm.MakeMove("old", "alice", model.WSMove{From: "c2", To: "c4"}); err != nil {
		t.Fatalf("move on restored game: %v", err)
	}

	if _, err := gm.GetGame("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("err = %v, want ErrGameNotFound", err)
	}
}

func TestMoveErrorsPassThrough(t *testing.T) {
	gm, _ := newTestManager(t)
	if err := gm.CreateGame("g"); err != nil {
		t.Fatal(err)
	}
	gm.AddPlayerToGame("g", "alice")
	gm.AddPlayerToGame("g", "bob")

	cases := []struct {
		player string
		move   model.WSMove
		want   error
	}{
		{"bob", model.WSMove{From: "e7", To: "e5"}, model.ErrNotYourTurn},
		{"eve", model.WSMove{From: "e2", To: "e4"}, model.ErrNotPlayer},
		{"alice", model.WSMove{From: "e1", To: "e2"}, model.ErrIllegalMove},
	}
	for _, tc := range cases {
		if err := gm.MakeMove("g", tc.player, tc.move); !errors.Is(err, tc.want) {
			t.Errorf("%s %v: err = %v, want %v", tc.player, tc.move, err, tc.want)
		}
	}
	if err := gm.MakeMove("nope", "alice", model.WSMove{From: "e2", To: "e4"}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("err = %v, want ErrGameNotFound", err)
	}
}

func TestListGames(t *testing.T) {
	gm, archive := newTestManager(t)
	archive.SaveGame(store.Record{ID: "b-archived", Moves: []string{"e2e4"}})
	gm.CreateGame("a-live")
	gm.CreateGame("c-live")

	games, err := gm.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 3 {
		t.Fatalf("games = %+v", games)
	}
	want := []string{"a-live", "b-archived", "c-live"}
	for i, g := range games {
		if g.ID != want[i] {
			t.Fatalf("games[%d] = %s, want %s", i, g.ID, want[i])
		}
	}
	if !games[0].Live || games[1].Live || games[1].Moves != 1 {
		t.Fatalf("summaries = %+v", games)
	}
}

func TestMatchmakingPairs(t *testing.T) {
	gm, _ := newTestManager(t)
	ch := make(chan string, 1)
	if err := gm.RegisterMatchmakingChannel("alice", ch); err != nil {
		t.Fatal(err)
	}
	if err := gm.JoinMatchmaking("alice"); err != nil {
		t.Fatal(err)
	}
	if err := gm.JoinMatchmaking("alice"); err == nil {
		t.Fatal("joined the queue twice")
	}
	if gm.pairPlayers() {
		t.Fatal("paired a single player")
	}
	gm.JoinMatchmaking("bob")
	if !gm.pairPlayers() {
		t.Fatal("no pair made")
	}

	var event model.MatchFoundEvent
	if err := json.Unmarshal([]byte(<-ch), &event); err != nil {
		t.Fatal(err)
	}
	if event.Color != model.PlayerColorWhite {
		t.Fatalf("alice got %s", event.Color)
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel left open after the match")
	}

	// bob registers late and still hears about the match
	late := make(chan string, 1)
	if err := gm.RegisterMatchmakingChannel("bob", late); err != nil {
		t.Fatal(err)
	}
	var bobEvent model.MatchFoundEvent
	json.Unmarshal([]byte(<-late), &bobEvent)
	if bobEvent.GameID != event.GameID || bobEvent.Color != model.PlayerColorBlack {
		t.Fatalf("bob event = %+v", bobEvent)
	}

	game, err := gm.GetGame(event.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if !game.IsPlayerInGame("alice") || !game.IsPlayerInGame("bob") {
		t.Fatal("players not seated")
	}
}

func TestArchiveKeepsLatestAfterRacingMoveAndUndo(t *testing.T) {
	gm, archive := newTestManager(t)
	if err := gm.CreateGame("race"); err != nil {
		t.Fatal(err)
	}
	gm.AddPlayerToGame("race", "alice")
	gm.AddPlayerToGame("race", "bob")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				gm.MakeMove("race", "alice", model.WSMove{From: "g1", To: "f3"})
			} else {
				gm.Undo("race", "alice")
			}
		}(i)
	}
	wg.Wait()

	game, err := gm.GetGame("race")
	if err != nil {
		t.Fatal(err)
	}
	rec, err := archive.LoadGame("race")
	if err != nil {
		t.Fatal(err)
	}
	if want := game.Record().Moves; len(rec.Moves) != len(want) {
		t.Fatalf("archive holds %v, game holds %v", rec.Moves, want)
	}
}
