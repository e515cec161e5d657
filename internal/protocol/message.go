package protocol

import (
	"encoding/json"

	"scopa-game/internal/scoring"
	"scopa-game/internal/shared"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Type of the message (e.g., "new_game", "play_card")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, allows flexible structures
}

// Message types.
const (
	TypeNewGame  = "new_game"
	TypePlayCard = "play_card"
	TypeReset    = "reset"
	TypePing     = "ping"

	TypeGameStart = "game_start"
	TypeGameState = "game_state"
	TypeYourTurn  = "your_turn"
	TypeRoundEnd  = "round_end"
	TypeError     = "error"
	TypePong      = "pong"
)

// --- Client -> Server Payload Structs ---

type NewGamePayload struct {
	Name     string `json:"name"`
	Players  int    `json:"players"`            // Seats at the table, the client included
	Strategy string `json:"strategy,omitempty"` // Bot strategy for the other seats
}

type PlayCardPayload struct {
	Card    shared.Card   `json:"card"`
	Targets []shared.Card `json:"targets,omitempty"` // Explicit capture, required when ambiguous
	Version uint64        `json:"version,omitempty"` // State version the move was chosen on; 0 means current
}

// --- Server -> Client Payload Structs ---

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seat int    `json:"seat"`
	Bot  bool   `json:"bot"`
}

type GameStartPayload struct {
	GameID  string       `json:"game_id"`
	Players []PlayerInfo `json:"players"`
}

// SeatView is what every client may see about a seat.
type SeatView struct {
	ID            string `json:"id"`
	HandCount     int    `json:"hand_count"`
	CapturedCount int    `json:"captured_count"`
	Scope         int    `json:"scope"`
}

type GameStatePayload struct {
	Version         uint64        `json:"version"`
	Phase           string        `json:"phase"`
	CurrentPlayerID string        `json:"current_player_id"`
	Table           []shared.Card `json:"table"`
	DrawPileCount   int           `json:"draw_pile_count"`
	Hand            []shared.Card `json:"hand"` // Only the recipient's own hand
	Seats           []SeatView    `json:"seats"`
}

// PlayOption is a legal play offered with your_turn.
type PlayOption struct {
	Card    shared.Card   `json:"card"`
	Targets []shared.Card `json:"targets,omitempty"`
}

type YourTurnPayload struct {
	PlayerID   string       `json:"player_id"`
	Version    uint64       `json:"version"`
	ValidMoves []PlayOption `json:"valid_moves,omitempty"`
}

type RoundEndPayload struct {
	Scores []scoring.Score `json:"scores"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// Helper function to create a JSON message
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	if payload == nil {
		return json.Marshal(Message{Type: msgType})
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg := Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
	return json.Marshal(msg)
}
