package chessdto

// BotMove describes a move chosen by the bot.
type BotMove struct {
	UCI         string       `json:"uci"`
	SAN         string       `json:"san"`
	Outcome     string       `json:"outcome"`
	Score       int          `json:"score"`
	Candidates  int          `json:"candidates"`
	Ties        int          `json:"ties,omitempty"`
	BookMove    string       `json:"book_move,omitempty"`
	OpeningCode string       `json:"opening_code,omitempty"`
	OpeningName string       `json:"opening_name,omitempty"`
	ElapsedMS   int64        `json:"elapsed_ms"`
	Overrun     bool         `json:"overrun,omitempty"`
	FENAfter    string       `json:"fen_after"`
	Explanation *Explanation `json:"explanation,omitempty"`
	Terms       []Term       `json:"terms,omitempty"`
}

type Term struct {
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Detail string `json:"detail,omitempty"`
}

type Explanation struct {
	Summary string   `json:"summary"`
	Reasons []string `json:"reasons,omitempty"`
}

// Decision is one logged bot move.
type Decision struct {
	Ply       int    `json:"ply"`
	FENBefore string `json:"fen_before"`
	UCI       string `json:"uci"`
	SAN       string `json:"san"`
	Outcome   string `json:"outcome"`
	Score     int    `json:"score"`
	Terms     []Term `json:"terms,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}
