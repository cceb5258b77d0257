package decisionlog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/park285/cheese-heuristic-bot/internal/domain"
)

// memrepo is used when no database is configured.
type memrepo struct {
	mu     sync.RWMutex
	nextID int64
	byGame map[string]map[int]*domain.Decision
}

func NewMemoryRepository() Repository {
	return &memrepo{byGame: make(map[string]map[int]*domain.Decision)}
}

func (m *memrepo) SaveDecision(_ context.Context, d *domain.Decision) error {
	if d == nil {
		return fmt.Errorf("nil decision")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	plies := m.byGame[d.GameID]
	if plies == nil {
		plies = make(map[int]*domain.Decision)
		m.byGame[d.GameID] = plies
	}
	if prev, ok := plies[d.Ply]; ok {
		d.ID = prev.ID
	} else {
		m.nextID++
		d.ID = m.nextID
	}
	dup := *d
	dup.Terms = append(dup.Terms[:0:0], d.Terms...)
	plies[d.Ply] = &dup
	return nil
}

func (m *memrepo) RecentDecisions(_ context.Context, gameID string, limit int) ([]*domain.Decision, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Decision, 0, len(m.byGame[gameID]))
	for _, d := range m.byGame[gameID] {
		dup := *d
		out = append(out, &dup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ply > out[j].Ply })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memrepo) Close() error { return nil }
