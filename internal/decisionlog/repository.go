// Package decisionlog records every move the bot selects.
package decisionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-heuristic-bot/internal/domain"
)

type Repository interface {
	SaveDecision(ctx context.Context, d *domain.Decision) error
	RecentDecisions(ctx context.Context, gameID string, limit int) ([]*domain.Decision, error)
	Close() error
}

const defaultRecentLimit = 20

type PostgresRepository struct {
	db *sql.DB
}

func Open(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresRepository(db), nil
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Schema creates the decision table when it is missing.
const Schema = `
CREATE TABLE IF NOT EXISTS bot_decisions (
	id          BIGSERIAL PRIMARY KEY,
	game_id     TEXT        NOT NULL,
	ply         INTEGER     NOT NULL,
	fen_before  TEXT        NOT NULL,
	uci         TEXT        NOT NULL,
	san         TEXT        NOT NULL,
	outcome     TEXT        NOT NULL,
	score       INTEGER     NOT NULL,
	terms       JSONB       NOT NULL,
	elapsed_ms  BIGINT      NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (game_id, ply)
)`

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create bot_decisions: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveDecision(ctx context.Context, d *domain.Decision) error {
	if d == nil {
		return fmt.Errorf("nil decision")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	terms, err := json.Marshal(d.Terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}

	const query = `
		INSERT INTO bot_decisions (
			game_id, ply, fen_before, uci, san, outcome, score, terms, elapsed_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
		ON CONFLICT (game_id, ply) DO UPDATE SET
			fen_before = EXCLUDED.fen_before,
			uci = EXCLUDED.uci,
			san = EXCLUDED.san,
			outcome = EXCLUDED.outcome,
			score = EXCLUDED.score,
			terms = EXCLUDED.terms,
			elapsed_ms = EXCLUDED.elapsed_ms,
			created_at = EXCLUDED.created_at
		RETURNING id`

	err = r.db.QueryRowContext(ctx, query,
		d.GameID, d.Ply, d.FENBefore, d.UCI, d.SAN, d.Outcome, d.Score,
		string(terms), d.Elapsed.Milliseconds(), d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecentDecisions(ctx context.Context, gameID string, limit int) ([]*domain.Decision, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	const query = `
		SELECT id, game_id, ply, fen_before, uci, san, outcome, score, terms, elapsed_ms, created_at
		FROM bot_decisions
		WHERE game_id = $1
		ORDER BY ply DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("select decisions: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Decision, 0, limit)
	for rows.Next() {
		var (
			d         domain.Decision
			termsJSON []byte
			elapsedMS int64
		)
		if err := rows.Scan(&d.ID, &d.GameID, &d.Ply, &d.FENBefore, &d.UCI, &d.SAN,
			&d.Outcome, &d.Score, &termsJSON, &elapsedMS, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if err := json.Unmarshal(termsJSON, &d.Terms); err != nil {
			return nil, fmt.Errorf("unmarshal terms: %w", err)
		}
		d.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
