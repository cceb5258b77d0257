package chessdto

// Error codes returned by the bot API.
const (
	CodeBadRequest     = "bad_request"
	CodeIllegalMove    = "illegal_move"
	CodeNoLegalMoves   = "no_legal_moves"
	CodeGameNotFound   = "game_not_found"
	CodeGameFinished   = "game_finished"
	CodeWrongSide      = "wrong_side"
	CodeUnknownPreset  = "unknown_preset"
	CodeInternal       = "internal"
	CodeRenderFailed   = "render_failed"
	CodeRequestTimeout = "timeout"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess bot error"
}

// ErrorResponse wraps a DomainError in API responses.
type ErrorResponse struct {
	Error DomainError `json:"error"`
}
