package domain

import (
	"time"

	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
)

// BotGame is one game the bot plays as Session.Side. Moves holds the UCI
// moves of both sides from StartFEN.
type BotGame struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	StartFEN  string             `json:"start_fen"`
	Moves     []string           `json:"moves"`
	MovesSAN  []string           `json:"moves_san"`
	Session   *heuristic.Session `json:"session"`
	Result    string             `json:"result,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Decision is one selected bot move as written to the decision log.
type Decision struct {
	ID        int64            `json:"id"`
	GameID    string           `json:"game_id"`
	Ply       int              `json:"ply"`
	FENBefore string           `json:"fen_before"`
	UCI       string           `json:"uci"`
	SAN       string           `json:"san"`
	Outcome   string           `json:"outcome"`
	Score     int              `json:"score"`
	Terms     []heuristic.Term `json:"terms"`
	Elapsed   time.Duration    `json:"elapsed"`
	CreatedAt time.Time        `json:"created_at"`
}
