package model

import "github.com/benbeisheim/chessrules-backend/internal/engine"

// WSMove is a move request as sent by a client: two squares in file+rank form.
type WSMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type CastleRookMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Ply struct {
	Piece          engine.Piece    `json:"piece"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	CapturedPiece  engine.Piece    `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      string          `json:"promotion"`
	EnPassant      bool            `json:"enPassant"`
	Notation       string          `json:"notation"`
}

// Move pairs white's ply with black's reply.
type Move struct {
	WhitePly Ply  `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newPly(m engine.Move) Ply {
	ply := Ply{
		Piece:         m.PieceMoved,
		From:          m.Start.String(),
		To:            m.End.String(),
		CapturedPiece: m.PieceCaptured,
		EnPassant:     m.IsEnPassant,
		Notation:      m.Notation(),
	}
	if m.IsPawnPromotion {
		ply.Promotion = string(engine.Queen)
	}
	if m.IsCastle {
		row := m.Start.Row
		if m.End.Col > m.Start.Col {
			ply.CastleRookMove = &CastleRookMove{
				From: engine.Square{Row: row, Col: 7}.String(),
				To:   engine.Square{Row: row, Col: 5}.String(),
			}
		} else {
			ply.CastleRookMove = &CastleRookMove{
				From: engine.Square{Row: row, Col: 0}.String(),
				To:   engine.Square{Row: row, Col: 3}.String(),
			}
		}
	}
	return ply
}

func newSimpleMove(m engine.Move) SimpleMove {
	return SimpleMove{From: m.Start.String(), To: m.End.String()}
}

// moveHistory folds the ply log into numbered move pairs.
func moveHistory(log []engine.Move) []Move {
	history := make([]Move, 0, (len(log)+1)/2)
	for _, m := range log {
		ply := newPly(m)
		if m.PieceMoved.Color() == engine.Black {
			if n := len(history); n > 0 && history[n-1].BlackPly == nil {
				history[n-1].BlackPly = &ply
			} else {
				history = append(history, Move{BlackPly: &ply})
			}
			continue
		}
		history = append(history, Move{WhitePly: ply})
	}
	return history
}
