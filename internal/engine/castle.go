package engine

// CastleRights holds the four independent castling flags. It is a value type;
// copies are snapshots.
type CastleRights struct {
	WhiteKingSide  bool `json:"wks"`
	WhiteQueenSide bool `json:"wqs"`
	BlackKingSide  bool `json:"bks"`
	BlackQueenSide bool `json:"bqs"`
}

func AllCastleRights() CastleRights {
	return CastleRights{WhiteKingSide: true, WhiteQueenSide: true, BlackKingSide: true, BlackQueenSide: true}
}

func (cr CastleRights) KingSide(c Color) bool {
	if c == White {
		return cr.WhiteKingSide
	}
	return cr.BlackKingSide
}

func (cr CastleRights) QueenSide(c Color) bool {
	if c == White {
		return cr.WhiteQueenSide
	}
	return cr.BlackQueenSide
}

// update clears the flags a move gives up. Rights only react to king moves and to
// rooks leaving their corner; a rook captured where it stands leaves them alone.
func (cr CastleRights) update(m Move) CastleRights {
	c := m.PieceMoved.Color()
	switch m.PieceMoved.Kind() {
	case King:
		if c == White {
			cr.WhiteKingSide = false
			cr.WhiteQueenSide = false
		} else {
			cr.BlackKingSide = false
			cr.BlackQueenSide = false
		}
	case Rook:
		if m.Start.Row != backRow(c) {
			break
		}
		switch m.Start.Col {
		case 0:
			if c == White {
				cr.WhiteQueenSide = false
			} else {
				cr.BlackQueenSide = false
			}
		case 7:
			if c == White {
				cr.WhiteKingSide = false
			} else {
				cr.BlackKingSide = false
			}
		}
	}
	return cr
}

func (cr CastleRights) String() string {
	s := ""
	if cr.WhiteKingSide {
		s += "K"
	}
	if cr.WhiteQueenSide {
		s += "Q"
	}
	if cr.BlackKingSide {
		s += "k"
	}
	if cr.BlackQueenSide {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}
