package model

import "github.com/benbeisheim/chessrules-backend/internal/engine"

// BoardState is the read-only snapshot handed to renderers. Empty squares carry
// the "--" sentinel.
type BoardState struct {
	Board             [8][8]engine.Piece `json:"board"`
	WhiteKingPosition string             `json:"whiteKingPosition"`
	BlackKingPosition string             `json:"blackKingPosition"`
}

type CapturedPieces struct {
	White []engine.Piece `json:"white"`
	Black []engine.Piece `json:"black"`
}

func newBoardState(gs *engine.GameState) *BoardState {
	return &BoardState{
		Board:             gs.Snapshot(),
		WhiteKingPosition: gs.KingSquare(engine.White).String(),
		BlackKingPosition: gs.KingSquare(engine.Black).String(),
	}
}

// capturedPieces lists what each side has taken, in capture order.
func capturedPieces(log []engine.Move) CapturedPieces {
	captured := CapturedPieces{
		White: make([]engine.Piece, 0),
		Black: make([]engine.Piece, 0),
	}
	for _, m := range log {
		if !m.IsCapture() {
			continue
		}
		switch m.PieceMoved.Color() {
		case engine.White:
			captured.White = append(captured.White, m.PieceCaptured)
		case engine.Black:
			captured.Black = append(captured.Black, m.PieceCaptured)
		}
	}
	return captured
}
