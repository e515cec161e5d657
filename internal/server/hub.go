package server

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"scopa-game/internal/bot"
	"scopa-game/internal/engine"
	"scopa-game/internal/game"
	"scopa-game/internal/protocol"
)

// clientMessage is a helper struct to pass messages along with the client reference.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

// Settings are the defaults for games created by the hub.
type Settings struct {
	Players  int
	Strategy string
	Script   string // Lua source for the scripted strategy
	Delay    time.Duration
}

// Hub manages WebSocket connections. Each client plays its own game against
// bots.
type Hub struct {
	clients        map[*Client]bool
	games          map[*Client]*game.Game
	strategies     map[*Client]bot.Strategy
	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	done           chan struct{} // closed when Run returns
	clientMu       sync.RWMutex
	settings       Settings
	recorder       game.ResultRecorder
	logger         *zap.Logger
}

// NewHub creates a new Hub instance. recorder may be nil.
func NewHub(settings Settings, recorder game.ResultRecorder, logger *zap.Logger) *Hub {
	if settings.Players == 0 {
		settings.Players = engine.DefaultSeats
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		games:          make(map[*Client]*game.Game),
		strategies:     make(map[*Client]bot.Strategy),
		processMessage: make(chan clientMessage),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		settings:       settings,
		recorder:       recorder,
		logger:         logger,
	}
}

// Run starts the Hub's main loop. It returns when ctx is done, after closing
// every game.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.games {
				h.endGame(client)
			}
			h.logger.Info("Hub stopped")
			return

		case client := <-h.register:
			h.logger.Info("Client connected", zap.String("client_id", client.ID), zap.Stringer("addr", client.conn.RemoteAddr()))
			h.clientMu.Lock()
			h.clients[client] = true
			h.clientMu.Unlock()

		case client := <-h.unregister:
			h.clientMu.Lock()
			_, clientExists := h.clients[client]
			if clientExists {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientMu.Unlock()

			if clientExists {
				h.logger.Info("Client disconnected", zap.String("client_id", client.ID), zap.String("name", client.Name))
				h.endGame(client)
			}

		case clientMsg := <-h.processMessage:
			h.handleMessage(clientMsg.client, clientMsg.message)
		}
	}
}

// registerClient hands a new connection to the hub. It reports false once
// the hub has stopped.
func (h *Hub) registerClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// unregisterClient asks the hub to drop a connection. It is a no-op once the
// hub has stopped.
func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// submit queues a client message for the hub loop. It reports false once the
// hub has stopped.
func (h *Hub) submit(c *Client, msg protocol.Message) bool {
	select {
	case h.processMessage <- clientMessage{client: c, message: msg}:
		return true
	case <-h.done:
		return false
	}
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeNewGame:
		h.handleNewGame(client, msg)
	case protocol.TypePlayCard, protocol.TypeReset:
		h.handleGameAction(client, msg)
	case protocol.TypePing:
		pongMsg, _ := protocol.NewMessage(protocol.TypePong, nil)
		h.sendMessageToClient(client.ID, pongMsg)
	default:
		h.logger.Warn("Unknown message type", zap.String("type", msg.Type), zap.String("client_id", client.ID))
		h.sendErrorToClient(client, "Unknown message type.")
	}
}

// handleNewGame replaces the client's game with a fresh one.
func (h *Hub) handleNewGame(client *Client, msg protocol.Message) {
	var payload protocol.NewGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.Warn("Invalid new_game payload", zap.String("client_id", client.ID), zap.Error(err))
		h.sendErrorToClient(client, "Invalid new_game message format.")
		return
	}
	if payload.Name == "" {
		h.sendErrorToClient(client, "Name cannot be empty.")
		return
	}
	if payload.Players == 0 {
		payload.Players = h.settings.Players
	}
	if !slices.Contains(engine.SupportedPlayers, payload.Players) {
		h.sendErrorToClient(client, fmt.Sprintf("Players must be one of %v.", engine.SupportedPlayers))
		return
	}
	if payload.Strategy == "" {
		payload.Strategy = h.settings.Strategy
	}

	strategy, err := bot.NewStrategy(payload.Strategy, h.settings.Script)
	if err != nil {
		h.logger.Warn("Cannot build strategy", zap.String("strategy", payload.Strategy), zap.Error(err))
		h.sendErrorToClient(client, "Unknown strategy.")
		return
	}

	h.endGame(client)
	client.Name = payload.Name

	seats := make([]game.Seat, payload.Players)
	seats[0] = game.Seat{ID: client.ID, Name: client.Name}
	for i := 1; i < len(seats); i++ {
		seats[i] = game.Seat{Name: fmt.Sprintf("bot-%d", i), Strategy: strategy}
	}

	g, err := game.NewGame(seats, game.Options{
		Thinker:  bot.Thinker{Delay: h.settings.Delay},
		Recorder: h.recorder,
		Sender:   h.sendMessageToClient,
	}, h.logger)
	if err != nil {
		closeStrategy(strategy)
		h.logger.Error("Cannot create game", zap.Error(err))
		h.sendErrorToClient(client, "Failed to create game.")
		return
	}
	h.games[client] = g
	h.strategies[client] = strategy

	h.logger.Info("Game created",
		zap.String("game_id", g.ID),
		zap.String("client_id", client.ID),
		zap.String("name", client.Name),
		zap.Int("players", payload.Players),
		zap.String("strategy", strategy.Name()))

	if err := g.Start(); err != nil {
		h.logger.Error("Cannot start game", zap.String("game_id", g.ID), zap.Error(err))
		h.sendErrorToClient(client, "Failed to start game.")
		h.endGame(client)
	}
}

// handleGameAction forwards play_card and reset to the client's game.
func (h *Hub) handleGameAction(client *Client, msg protocol.Message) {
	g, ok := h.games[client]
	if !ok {
		h.logger.Info("Action without a game", zap.String("type", msg.Type), zap.String("client_id", client.ID))
		h.sendErrorToClient(client, "Start a game first.")
		return
	}
	g.HandlePlayerAction(client.ID, msg)
}

// endGame closes the client's game, if any. Bot goroutines are waited for
// off the hub loop.
func (h *Hub) endGame(client *Client) {
	g, ok := h.games[client]
	if !ok {
		return
	}
	strategy := h.strategies[client]
	delete(h.games, client)
	delete(h.strategies, client)
	go func() {
		g.Close()
		closeStrategy(strategy)
	}()
}

// closeStrategy releases strategies that hold resources, such as a Lua state.
func closeStrategy(s bot.Strategy) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}

// sendMessageToClient allows the game logic to send messages back via the hub/client.
// This is passed as a callback to the game instance.
func (h *Hub) sendMessageToClient(clientID string, message []byte) {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()

	var targetClient *Client
	for client := range h.clients {
		if client.ID == clientID {
			targetClient = client
			break
		}
	}
	if targetClient == nil {
		h.logger.Debug("Dropping message for disconnected client", zap.String("client_id", clientID))
		return
	}

	// Non-blocking so a slow client never stalls a game. The send channel is
	// only closed under the write lock, so it is open here.
	select {
	case targetClient.send <- message:
	default:
		h.logger.Warn("Client send buffer full, disconnecting", zap.String("client_id", clientID))
		go h.unregisterClient(targetClient)
	}
}

// sendErrorToClient sends a generic error message to a specific client.
func (h *Hub) sendErrorToClient(client *Client, errorMsg string) {
	msgBytes, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{Message: errorMsg})
	if err != nil {
		h.logger.Error("Failed to build error message", zap.String("client_id", client.ID), zap.Error(err))
		return
	}
	h.sendMessageToClient(client.ID, msgBytes)
}
