package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/store"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameSummary is one row of the game listing.
type GameSummary struct {
	ID     string `json:"id"`
	White  string `json:"white"`
	Black  string `json:"black"`
	Moves  int    `json:"moves"`
	Status string `json:"status"`
	Live   bool   `json:"live"`
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	// match events that could not be delivered yet, by player
	pendingMatches map[string]model.MatchFoundEvent
	archive        *store.Store
	clock          time.Duration
	mu             sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewGameManager starts the lobby pairing loop. archive may be nil, in which
// case games live only in memory.
func NewGameManager(archive *store.Store, clock, pairInterval time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		pendingMatches:   make(map[string]model.MatchFoundEvent),
		archive:          archive,
		clock:            clock,
		done:             make(chan struct{}),
	}

	// Start matchmaking processor
	go gm.processMatchmaking(pairInterval)

	return gm
}

// Close stops the pairing loop.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			for gm.pairPlayers() {
			}
		}
	}
}

// pairPlayers seats the two longest waiting players in a fresh game and tells
// them about it. It reports whether a pair was made.
func (gm *GameManager) pairPlayers() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.clock)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.Printf("matchmaking: seating %s: %v", player1.ID, err)
		return false
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.Printf("matchmaking: seating %s: %v", player2.ID, err)
		return false
	}
	gm.games[gameID] = game
	gm.persist(game)
	log.Printf("matchmaking: paired %s and %s in game %s", player1.ID, player2.ID, gameID)

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	return true
}

// notifyMatch hands event to the player's channel and closes it. Without a
// listening channel the event waits until the player registers one.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if ok {
		select {
		case ch <- mustJSON(event):
			delete(gm.matchingChannels, playerID)
			close(ch)
			return
		default:
		}
	}
	gm.pendingMatches[playerID] = event
}

// RegisterMatchmakingChannel subscribes ch to playerID's match event. ch must
// have room for one message; a match already found is delivered at once.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		select {
		case ch <- mustJSON(event):
			close(ch)
			return nil
		default:
			return errors.New("matchmaking channel has no room")
		}
	}
	gm.matchingChannels[playerID] = ch
	return nil
}

// UnregisterMatchmakingChannel drops the subscription without closing the
// channel; its creator owns it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.matchingChannels, playerID)
}

func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	game := model.NewGame(gameID, gm.clock)
	gm.games[gameID] = game
	gm.persist(game)
	return nil
}

// GetGame returns a live game, reloading it from the archive when it is not in
// memory.
func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}
	if gm.archive == nil {
		return nil, ErrGameNotFound
	}

	rec, err := gm.archive.LoadGame(gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	restored, err := model.RestoreGame(rec, gm.clock)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", gameID, err)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	// another request may have restored it meanwhile
	if game, exists := gm.games[gameID]; exists {
		return game, nil
	}
	gm.games[gameID] = restored
	log.Printf("game %s: restored from archive after %d moves", gameID, len(rec.Moves))
	return restored, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PlayerColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gm.persist(game)
	return color, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return fmt.Errorf("join matchmaking: %w", err)
	}
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID, from string) ([]model.SimpleMove, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMovesFrom(from)
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.MakeMove(playerID, move); err != nil {
		return err
	}
	gm.persist(game)
	return nil
}

func (gm *GameManager) Undo(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Undo(playerID); err != nil {
		return err
	}
	gm.persist(game)
	return nil
}

// ListGames merges live games with the archive, sorted by ID.
func (gm *GameManager) ListGames() ([]GameSummary, error) {
	byID := make(map[string]GameSummary)
	if gm.archive != nil {
		records, err := gm.archive.ListGames()
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			byID[rec.ID] = summaryOf(rec, false)
		}
	}

	gm.mu.RLock()
	live := maps.Values(gm.games)
	gm.mu.RUnlock()
	for _, game := range live {
		byID[game.ID] = summaryOf(game.Record(), true)
	}

	ids := maps.Keys(byID)
	slices.Sort(ids)
	out := make([]GameSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}

func summaryOf(rec store.Record, live bool) GameSummary {
	return GameSummary{
		ID:     rec.ID,
		White:  rec.White,
		Black:  rec.Black,
		Moves:  len(rec.Moves),
		Status: rec.Status,
		Live:   live,
	}
}

// persist writes the game's current record to the archive. A failed write is
// logged; the game itself carries on.
func (gm *GameManager) persist(game *model.Game) {
	if gm.archive == nil {
		return
	}
	if err := game.Save(gm.archive.SaveGame); err != nil {
		log.Printf("game %s: archive write failed: %v", game.ID, err)
	}
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if !exists {
		return
	}
	game.UnregisterConnection(playerID)
}

// SendError reports a failed websocket request back to its sender.
func (gm *GameManager) SendError(gameID, playerID, msg string) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		game.SendError(playerID, msg)
	}
}
