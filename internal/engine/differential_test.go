package engine_test

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/dylhunn/dragontoothmg"

	"github.com/benbeisheim/chessrules-backend/internal/engine"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// coordinates drops the promotion suffix; both generators then agree on one
// entry per from/to pair.
func coordinates(uci string) string {
	return strings.ToLower(uci)[:4]
}

func ourMoves(gs *engine.GameState) []string {
	out := []string{}
	for _, m := range gs.LegalMoves() {
		out = append(out, coordinates(m.UCI()))
	}
	sort.Strings(out)
	return out
}

func referenceMoves(b *dragontoothmg.Board) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range b.GenerateLegalMoves() {
		s := coordinates(m.String())
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func nearBackRank(m engine.Move) bool {
	if m.PieceMoved.Kind() != engine.Pawn {
		return false
	}
	if m.PieceMoved.Color() == engine.White {
		return m.End.Row == 1
	}
	return m.End.Row == 6
}

func applyReference(t *testing.T, b *dragontoothmg.Board, uci string) {
	t.Helper()
	for _, m := range b.GenerateLegalMoves() {
		s := strings.ToLower(m.String())
		if s[:4] != uci[:4] {
			continue
		}
		if len(s) == 5 && s[4] != 'q' {
			continue
		}
		b.Apply(m)
		return
	}
	t.Fatalf("reference generator has no move %s", uci)
}

// Random games compared ply by ply against dragontoothmg. A game stops when a
// rook is captured, since castling rights here survive an in-place rook capture
// and the reference clears them. It also stops when a pawn reaches the rank next
// to the enemy back rank: castling paths here are checked against pawn pushes,
// the reference checks pawn diagonals.
func TestLegalMovesMatchReference(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		gs := engine.NewGameState()
		ref := dragontoothmg.ParseFen(startFEN)
		history := []string{}

		for ply := 0; ply < 120; ply++ {
			ours, theirs := ourMoves(gs), referenceMoves(&ref)
			if strings.Join(ours, " ") != strings.Join(theirs, " ") {
				t.Fatalf("seed %d ply %d after %v:\nours   %v\ntheirs %v", seed, ply, history, ours, theirs)
			}
			moves := gs.LegalMoves()
			if len(moves) == 0 {
				if gs.Checkmate() == gs.Stalemate() {
					t.Fatalf("seed %d: no moves but checkmate=%v stalemate=%v", seed, gs.Checkmate(), gs.Stalemate())
				}
				break
			}
			m := moves[rng.Intn(len(moves))]
			if m.PieceCaptured.Kind() == engine.Rook || nearBackRank(m) {
				break
			}
			if _, ok := gs.ApplyMove(m); !ok {
				t.Fatalf("seed %d: own legal move %s rejected", seed, m.Notation())
			}
			applyReference(t, &ref, m.UCI())
			history = append(history, m.UCI())
		}
	}
}

func TestPerftMatchesReferenceAfterOpening(t *testing.T) {
	gs := engine.NewGameState()
	ref := dragontoothmg.ParseFen(startFEN)
	for _, uci := range []string{"e2e4", "d7d5", "e4e5", "f7f5", "g1f3", "g8f6"} {
		if _, ok, err := gs.ApplyUCI(uci); err != nil || !ok {
			t.Fatalf("%s rejected: %v", uci, err)
		}
		applyReference(t, &ref, uci)
	}

	var refPerft func(depth int) int
	refPerft = func(depth int) int {
		if depth == 0 {
			return 1
		}
		n := 0
		for _, m := range ref.GenerateLegalMoves() {
			undo := ref.Apply(m)
			n += refPerft(depth - 1)
			undo()
		}
		return n
	}

	// no promotions are reachable in two plies, so the counts are comparable
	if got, want := engine.Perft(gs, 2), refPerft(2); got != want {
		t.Fatalf("perft 2: got %d, reference %d", got, want)
	}
}
