package model

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chessrules-backend/internal/engine"
	"github.com/benbeisheim/chessrules-backend/internal/store"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

var (
	ErrGameFull      = errors.New("game is full")
	ErrNotPlayer     = errors.New("player not in game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNothingToUndo = errors.New("no moves to undo")
	ErrGameOver      = errors.New("game is over")
	ErrInvalidSquare = errors.New("invalid square")
)

const (
	ResolveCheckmate = "checkmate"
	ResolveStalemate = "stalemate"
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
	// version of the last state written out; older states are dropped
	sentVersion uint64
}

// Game is one session: the rules engine plus seats, clocks and observers. The
// engine is not safe for concurrent use, so every access goes through mu.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       *engine.GameState
	white       ClientPlayer
	black       ClientPlayer
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	createdAt   time.Time
	// bumped on every move and undo, under mu
	version     uint64
	// serialises archive writes of this game
	saveMu      sync.Mutex
}

// GameState is the JSON view of a game sent to clients.
type GameState struct {
	ID              string              `json:"id"`
	Board           *BoardState         `json:"boardState"`
	ToMove          string              `json:"toMove"`
	MoveHistory     []Move              `json:"moveHistory"`
	CapturedPieces  CapturedPieces      `json:"capturedPieces"`
	IsCheck         bool                `json:"isCheck"`
	LegalMoves      []SimpleMove        `json:"legalMoves"`
	EnPassantTarget *string             `json:"enPassantTarget"`
	CastleRights    engine.CastleRights `json:"castleRights"`
	Resolve         *string             `json:"resolve"`
	Players         struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	LastMove *SimpleMove `json:"lastMove"`
}

func NewGame(id string, clock time.Duration) *Game {
	return newGame(id, engine.NewGameState(), clock)
}

// RestoreGame rebuilds a session from its archived record.
func RestoreGame(rec store.Record, clock time.Duration) (*Game, error) {
	state, err := store.Replay(rec)
	if err != nil {
		return nil, err
	}
	g := newGame(rec.ID, state, clock)
	g.createdAt = rec.CreatedAt
	if rec.White != "" {
		g.white.ID = rec.White
	}
	if rec.Black != "" {
		g.black.ID = rec.Black
	}
	return g, nil
}

func newGame(id string, state *engine.GameState, clock time.Duration) *Game {
	return &Game{
		ID:          id,
		state:       state,
		white:       ClientPlayer{Color: string(PlayerColorWhite)},
		black:       ClientPlayer{Color: string(PlayerColorBlack)},
		connections: NewGameConnections(),
		whiteClock:  NewClock(clock),
		blackClock:  NewClock(clock),
		createdAt:   time.Now(),
	}
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

// AddPlayer seats playerID in the first free seat, white first. A player
// already seated gets their seat back.
func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if playerID == "" {
		return "", ErrNotPlayer
	}
	switch playerID {
	case g.white.ID:
		return PlayerColorWhite, nil
	case g.black.ID:
		return PlayerColorBlack, nil
	}
	if g.white.ID == "" {
		g.white.ID = playerID
		return PlayerColorWhite, nil
	}
	if g.black.ID == "" {
		g.black.ID = playerID
		return PlayerColorBlack, nil
	}
	return "", ErrGameFull
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	return playerID != "" && (g.white.ID == playerID || g.black.ID == playerID)
}

// ColorOf reports the seat playerID holds.
func (g *Game) ColorOf(playerID string) (PlayerColor, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case playerID == "":
		return "", false
	case g.white.ID == playerID:
		return PlayerColorWhite, true
	case g.black.ID == playerID:
		return PlayerColorBlack, true
	}
	return "", false
}

func (g *Game) isSeatedAs(playerID string, c engine.Color) bool {
	if playerID == "" {
		return false
	}
	if c == engine.White {
		return g.white.ID == playerID
	}
	return g.black.ID == playerID
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.white.ID == "" || g.black.ID == ""
}

// MakeMove validates move against the legal move list and plays it for the
// side to move.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.IsGameOver() {
		return ErrGameOver
	}
	mover := g.state.SideToMove()
	if !g.isSeatedAs(playerID, mover) {
		if !g.isPlayerInGame(playerID) {
			return ErrNotPlayer
		}
		return ErrNotYourTurn
	}

	from, err := engine.ParseSquare(move.From)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	to, err := engine.ParseSquare(move.To)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	applied, ok := g.state.ApplyMove(engine.NewMove(from, to, g.state.Board()))
	if !ok {
		return fmt.Errorf("%w: %s%s", ErrIllegalMove, move.From, move.To)
	}
	log.Printf("game %s: %s played %s", g.ID, mover, applied.Notation())

	// Stop current player's clock, start the opponent's unless the game ended
	g.clockFor(mover).Stop()
	if !g.state.IsGameOver() {
		g.clockFor(mover.Opponent()).Start()
	}

	g.version++
	go g.broadcastState(g.view(), g.version)
	return nil
}

// Undo takes back the last ply. Either seated player may ask for it.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isPlayerInGame(playerID) {
		return ErrNotPlayer
	}
	if g.state.MoveCount() == 0 {
		return ErrNothingToUndo
	}
	undone, _ := g.state.LastMove()
	g.state.UndoMove()
	log.Printf("game %s: %s took back %s", g.ID, playerID, undone.Notation())

	toMove := g.state.SideToMove()
	g.clockFor(toMove.Opponent()).Stop()
	g.clockFor(toMove).Start()

	g.version++
	go g.broadcastState(g.view(), g.version)
	return nil
}

func (g *Game) clockFor(c engine.Color) *Clock {
	if c == engine.White {
		return g.whiteClock
	}
	return g.blackClock
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.view()
}

// LegalMovesFrom lists legal moves, all of them when from is empty.
func (g *Game) LegalMovesFrom(from string) ([]SimpleMove, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var moves []engine.Move
	if from == "" {
		moves = g.state.LegalMoves()
	} else {
		sq, err := engine.ParseSquare(from)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSquare, err)
		}
		moves = g.state.LegalMovesFrom(sq)
	}
	out := make([]SimpleMove, 0, len(moves))
	for _, m := range moves {
		out = append(out, newSimpleMove(m))
	}
	return out, nil
}

// Save hands the current record to save. Saves of one game never overlap, so
// the last one to finish always carries the newest record.
func (g *Game) Save(save func(store.Record) error) error {
	g.saveMu.Lock()
	defer g.saveMu.Unlock()

	return save(g.Record())
}

// Record returns what the archive keeps for this game.
func (g *Game) Record() store.Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	return store.Record{
		ID:        g.ID,
		White:     g.white.ID,
		Black:     g.black.ID,
		Moves:     store.MovesOf(g.state),
		Status:    g.resolve(),
		CreatedAt: g.createdAt,
	}
}

func (g *Game) resolve() string {
	g.state.LegalMoves()
	switch {
	case g.state.Checkmate():
		return ResolveCheckmate
	case g.state.Stalemate():
		return ResolveStalemate
	}
	return ""
}

func (g *Game) view() GameState {
	legal := g.state.LegalMoves()
	history := g.state.MoveLog()

	view := GameState{
		ID:             g.ID,
		Board:          newBoardState(g.state),
		ToMove:         g.state.SideToMove().String(),
		MoveHistory:    moveHistory(history),
		CapturedPieces: capturedPieces(history),
		IsCheck:        g.state.InCheck(),
		LegalMoves:     make([]SimpleMove, 0, len(legal)),
		CastleRights:   g.state.CastleRights(),
	}
	for _, m := range legal {
		view.LegalMoves = append(view.LegalMoves, newSimpleMove(m))
	}
	if ep := g.state.EnPassantTarget(); ep.Valid() {
		target := ep.String()
		view.EnPassantTarget = &target
	}
	if result := g.resolve(); result != "" {
		view.Resolve = &result
	}
	if last, ok := g.state.LastMove(); ok {
		lm := newSimpleMove(last)
		view.LastMove = &lm
	}
	view.Players.White = g.white
	view.Players.White.TimeLeft = g.whiteClock.tenths()
	view.Players.Black = g.black
	view.Players.Black.TimeLeft = g.blackClock.tenths()
	return view
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	view, version := g.view(), g.version
	g.mu.Unlock()

	if !isAuthorized {
		return errors.New("not authorized to join this game")
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil // Not really an error, just rejecting duplicate connection
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Printf("game %s: registered connection for player %s", g.ID, playerID)

	go g.broadcastState(view, version)
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if _, exists := g.connections.connections[playerID]; exists {
		log.Printf("game %s: unregistering connection for player %s", g.ID, playerID)
		delete(g.connections.connections, playerID)
	}
}

// SendError reports a failed request to one player only.
func (g *Game) SendError(playerID string, errMsg string) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: errMsg})
	if err != nil {
		return
	}
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if conn, ok := g.connections.connections[playerID]; ok {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("game %s: failed to send error to %s: %v", g.ID, playerID, err)
		}
	}
}

// broadcastState writes state to every connection. Writes are serialised by the
// connections lock; connections that fail are dropped. A state older than one
// already sent is skipped and false is returned.
func (g *Game) broadcastState(state GameState, version uint64) bool {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Printf("game %s: failed to marshal state: %v", g.ID, err)
		return false
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if version < g.connections.sentVersion {
		return false
	}
	g.connections.sentVersion = version

	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("game %s: failed to send state to %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
	return true
}
