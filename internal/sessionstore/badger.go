package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/park285/cheese-heuristic-bot/internal/domain"
)

// BadgerStore keeps sessions in a local Badger database. Entries expire after
// ttl when ttl is positive.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore opens dir, or an in-memory database when dir is empty.
func NewBadgerStore(dir string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if strings.TrimSpace(dir) == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (s *BadgerStore) Load(_ context.Context, id string) (*domain.BotGame, error) {
	var game *domain.BotGame
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKey(id)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			game = &domain.BotGame{}
			return json.Unmarshal(val, game)
		})
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *BadgerStore) Save(_ context.Context, game *domain.BotGame) error {
	if game == nil || strings.TrimSpace(game.ID) == "" {
		return fmt.Errorf("cannot save session without id")
	}
	touch(game)
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", game.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(sessionKey(game.ID)), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *BadgerStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKey(id)))
	})
}

func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
