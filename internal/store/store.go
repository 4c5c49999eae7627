package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/benbeisheim/chessrules-backend/internal/engine"
)

const gamePrefix = "game/"

var ErrNotFound = errors.New("game record not found")

// Record is what survives a restart: who sat where and the moves in order.
type Record struct {
	ID        string    `json:"id"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Moves     []string  `json:"moves"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store wraps BadgerDB as the game archive.
type Store struct {
	db *badger.DB
}

// Open opens the archive in dir. An empty dir gives an in-memory store.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open game store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

func (s *Store) SaveGame(rec Record) error {
	if rec.ID == "" {
		return errors.New("save game: empty id")
	}
	rec.UpdatedAt = time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save game %s: %w", rec.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID), data)
	})
}

func (s *Store) LoadGame(id string) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return Record{}, fmt.Errorf("load game %s: %w", id, err)
	}
	return rec, nil
}

// ListGames returns every archived record in key order.
func (s *Store) ListGames() ([]Record, error) {
	records := []Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return records, nil
}

func (s *Store) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}

// Replay rebuilds the game state by applying every recorded move in order.
func Replay(rec Record) (*engine.GameState, error) {
	gs := engine.NewGameState()
	for i, uci := range rec.Moves {
		_, ok, err := gs.ApplyUCI(uci)
		if err != nil {
			return nil, fmt.Errorf("replay %s move %d: %w", rec.ID, i+1, err)
		}
		if !ok {
			return nil, fmt.Errorf("replay %s move %d: %s is not legal", rec.ID, i+1, uci)
		}
	}
	return gs, nil
}

// MovesOf lists a game's moves in the form Replay expects.
func MovesOf(gs *engine.GameState) []string {
	log := gs.MoveLog()
	moves := make([]string, 0, len(log))
	for _, m := range log {
		moves = append(moves, m.UCI())
	}
	return moves
}
