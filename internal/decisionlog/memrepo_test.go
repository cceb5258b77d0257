package decisionlog

import (
	"context"
	"testing"
	"time"

	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/domain"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for ply := 1; ply <= 5; ply++ {
		d := &domain.Decision{
			GameID:  "g1",
			Ply:     ply,
			UCI:     "e2e4",
			Outcome: "heuristic(10)",
			Score:   ply * 10,
			Terms:   []heuristic.Term{{Name: heuristic.TermBoardControl, Value: ply}},
			Elapsed: time.Duration(ply) * time.Millisecond,
		}
		if err := repo.SaveDecision(ctx, d); err != nil {
			t.Fatalf("SaveDecision: %v", err)
		}
		if d.ID == 0 || d.CreatedAt.IsZero() {
			t.Fatalf("decision not stamped: %+v", d)
		}
	}
	if err := repo.SaveDecision(ctx, &domain.Decision{GameID: "g2", Ply: 1}); err != nil {
		t.Fatalf("SaveDecision: %v", err)
	}

	got, err := repo.RecentDecisions(ctx, "g1", 3)
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(got) != 3 || got[0].Ply != 5 || got[2].Ply != 3 {
		t.Fatalf("recent = %+v", got)
	}

	again := &domain.Decision{GameID: "g1", Ply: 5, UCI: "d2d4"}
	if err := repo.SaveDecision(ctx, again); err != nil {
		t.Fatalf("SaveDecision: %v", err)
	}
	if again.ID != got[0].ID {
		t.Fatalf("upsert changed id: %d vs %d", again.ID, got[0].ID)
	}
	got, _ = repo.RecentDecisions(ctx, "g1", 0)
	if len(got) != 5 || got[0].UCI != "d2d4" {
		t.Fatalf("after upsert = %+v", got[0])
	}
}
