// Package sessionstore persists bot games between requests.
package sessionstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/park285/cheese-heuristic-bot/internal/domain"
)

var ErrSessionNotFound = errors.New("bot session not found")

type Store interface {
	Load(ctx context.Context, id string) (*domain.BotGame, error)
	Save(ctx context.Context, game *domain.BotGame) error
	Delete(ctx context.Context, id string) error
	Close() error
}

const keyPrefix = "bot:session:"

func sessionKey(id string) string { return keyPrefix + strings.TrimSpace(id) }

func touch(game *domain.BotGame) {
	now := time.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	game.UpdatedAt = now
}
