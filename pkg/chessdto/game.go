package chessdto

import "time"

// GameState is the public view of a stored bot game.
type GameState struct {
	ID        string    `json:"id"`
	Preset    string    `json:"preset"`
	BotSide   string    `json:"bot_side"`
	Variant   string    `json:"variant,omitempty"`
	StartFEN  string    `json:"start_fen"`
	FEN       string    `json:"fen"`
	MovesUCI  []string  `json:"moves_uci"`
	MovesSAN  []string  `json:"moves_san"`
	ToMove    string    `json:"to_move"`
	Result    string    `json:"result,omitempty"`
	Material  Material  `json:"material"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Material struct {
	White int `json:"white"`
	Black int `json:"black"`
}
