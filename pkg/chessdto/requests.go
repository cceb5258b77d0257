package chessdto

// MoveRequest asks for one bot move. Either GameID names a stored session or
// FEN and Moves describe a standalone position.
type MoveRequest struct {
	GameID string   `json:"game_id,omitempty"`
	FEN    string   `json:"fen,omitempty"`
	Moves  []string `json:"moves,omitempty"`
	Preset string   `json:"preset,omitempty"`
	// BudgetMillis overrides the configured per-turn budget.
	BudgetMillis int  `json:"budget_ms,omitempty"`
	Explain      bool `json:"explain,omitempty"`
}

type MoveResponse struct {
	Move     *BotMove   `json:"move,omitempty"`
	Game     *GameState `json:"game,omitempty"`
	GameOver bool       `json:"game_over"`
}

type StartGameRequest struct {
	// BotSide is "white" or "black"; the bot moves first when it plays white.
	BotSide  string `json:"bot_side"`
	Preset   string `json:"preset,omitempty"`
	StartFEN string `json:"start_fen,omitempty"`
}

type StartGameResponse struct {
	Game    *GameState `json:"game"`
	Opening *BotMove   `json:"opening,omitempty"`
}

// PlayRequest submits the opponent's move in UCI or SAN; the bot replies.
type PlayRequest struct {
	Move string `json:"move"`
}

type PlayResponse struct {
	PlayerUCI string     `json:"player_uci"`
	PlayerSAN string     `json:"player_san"`
	Reply     *BotMove   `json:"reply,omitempty"`
	Game      *GameState `json:"game"`
}

type DecisionsResponse struct {
	Decisions []*Decision `json:"decisions"`
}
