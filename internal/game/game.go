package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scopa-game/internal/bot"
	"scopa-game/internal/database"
	"scopa-game/internal/engine"
	"scopa-game/internal/protocol"
	"scopa-game/internal/scoring"
	"scopa-game/internal/shared"
)

var (
	// ErrStaleState is returned for a move chosen on a state that has since
	// been replaced by another move or a reset.
	ErrStaleState = errors.New("state has changed since the move was chosen")
	// ErrNotYourSeat is returned when the acting seat is not part of the game.
	ErrNotYourSeat = errors.New("not your seat")
	// ErrGameClosed is returned once Close has been called.
	ErrGameClosed = errors.New("game is closed")
)

const recordTimeout = 5 * time.Second

// MessageSender defines the function signature for sending messages back to clients.
// The Hub will provide an implementation of this.
type MessageSender func(clientID string, message []byte)

// ResultRecorder persists the scores of a finished round.
type ResultRecorder interface {
	Insert(ctx context.Context, results []database.RoundResult) error
}

// Seat is a place at the table. A seat without a strategy is played by a client.
type Seat struct {
	ID       string
	Name     string
	Strategy bot.Strategy
}

// IsBot reports whether the seat is played by a strategy.
func (s Seat) IsBot() bool {
	return s.Strategy != nil
}

// Options configures a Game. Every field is optional.
type Options struct {
	Thinker  bot.Thinker
	Rand     *rand.Rand // Shuffles and picks the first player
	Recorder ResultRecorder
	Sender   MessageSender
}

// Game owns the authoritative round state. Every accepted move or reset
// replaces the state and bumps its version; bot moves are computed on a
// snapshot and dropped if the version moved on while they were thinking.
type Game struct {
	ID string

	seats   []Seat
	state   engine.State
	version uint64
	rounds  int

	thinker     bot.Thinker
	rng         *rand.Rand
	recorder    ResultRecorder
	sendMessage MessageSender
	logger      *zap.Logger

	mu         sync.Mutex
	unrecorded []database.RoundResult // finished round waiting for unlock
	cancelBot  context.CancelFunc
	bots       sync.WaitGroup
	closed     bool
}

// NewGame creates a game for the given seats. Seats without an ID get one.
func NewGame(seats []Seat, opts Options, logger *zap.Logger) (*Game, error) {
	if !slices.Contains(engine.SupportedPlayers, len(seats)) {
		return nil, fmt.Errorf("%w: %d seats", engine.ErrInvalidPlayers, len(seats))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	own := make([]Seat, len(seats))
	seen := make(map[string]bool, len(seats))
	for i, s := range seats {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: duplicate seat id %s", engine.ErrInvalidPlayers, s.ID)
		}
		seen[s.ID] = true
		if s.Name == "" {
			s.Name = fmt.Sprintf("player-%d", i+1)
		}
		own[i] = s
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	id := uuid.NewString()
	return &Game{
		ID:          id,
		seats:       own,
		thinker:     opts.Thinker,
		rng:         rng,
		recorder:    opts.Recorder,
		sendMessage: opts.Sender,
		logger:      logger.With(zap.String("game_id", id)),
	}, nil
}

// Start announces the players and deals the first round.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.unlock()
	if g.closed {
		return ErrGameClosed
	}

	players := make([]protocol.PlayerInfo, len(g.seats))
	for i, s := range g.seats {
		players[i] = protocol.PlayerInfo{ID: s.ID, Name: s.Name, Seat: i, Bot: s.IsBot()}
	}
	startMsg, _ := protocol.NewMessage(protocol.TypeGameStart, protocol.GameStartPayload{
		GameID:  g.ID,
		Players: players,
	})
	g.broadcast(startMsg)

	g.logger.Info("Game started", zap.Int("seats", len(g.seats)))
	return g.startRound()
}

// Reset abandons the current round, discarding any pending bot move, and
// deals a new one.
func (g *Game) Reset() error {
	g.mu.Lock()
	defer g.unlock()
	if g.closed {
		return ErrGameClosed
	}
	g.cancelPendingBot()
	g.logger.Info("Round reset", zap.Int("round", g.rounds), zap.Uint64("version", g.version))
	return g.startRound()
}

// Apply plays move for the seat, provided version is still current.
func (g *Game) Apply(version uint64, seatID string, move engine.Move) error {
	g.mu.Lock()
	defer g.unlock()
	return g.applyLocked(version, seatID, move)
}

// Snapshot returns a copy of the current state and its version.
func (g *Game) Snapshot() (engine.State, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone(), g.version
}

// Seats returns the seats in table order.
func (g *Game) Seats() []Seat {
	return slices.Clone(g.seats)
}

// Close cancels any pending bot move and waits for bot goroutines to exit.
// Later calls are no-ops.
func (g *Game) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.cancelPendingBot()
	g.mu.Unlock()

	g.bots.Wait()
	g.logger.Info("Game closed", zap.Int("rounds", g.rounds))
}

// HandlePlayerAction processes incoming actions from a client seat.
func (g *Game) HandlePlayerAction(clientID string, msg protocol.Message) {
	seat := g.seatIndex(clientID)
	if seat < 0 || g.seats[seat].IsBot() {
		g.logger.Warn("Action from unknown client", zap.String("client_id", clientID), zap.String("type", msg.Type))
		return
	}

	switch msg.Type {
	case protocol.TypePlayCard:
		var payload protocol.PlayCardPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			g.logger.Warn("Invalid play_card payload", zap.String("client_id", clientID), zap.Error(err))
			g.sendErrorToPlayer(clientID, "Invalid play_card message.")
			return
		}

		g.mu.Lock()
		version := payload.Version
		if version == 0 {
			version = g.version
		}
		err := g.applyLocked(version, clientID, engine.Move{Card: payload.Card, Targets: payload.Targets})
		g.unlock()

		if err != nil {
			g.logger.Info("Rejected move", zap.String("client_id", clientID), zap.Stringer("card", payload.Card), zap.Error(err))
			g.sendErrorToPlayer(clientID, describe(err))
		}

	case protocol.TypeReset:
		if err := g.Reset(); err != nil {
			g.logger.Error("Reset failed", zap.Error(err))
			g.sendErrorToPlayer(clientID, "Could not start a new round.")
		}

	default:
		g.logger.Warn("Unhandled action type", zap.String("client_id", clientID), zap.String("type", msg.Type))
		g.sendErrorToPlayer(clientID, "Unknown action.")
	}
}

// applyLocked assumes the lock is held.
func (g *Game) applyLocked(version uint64, seatID string, move engine.Move) error {
	if g.closed {
		return ErrGameClosed
	}
	if version != g.version {
		return fmt.Errorf("%w: version %d, current %d", ErrStaleState, version, g.version)
	}
	seat := g.seatIndex(seatID)
	if seat < 0 {
		return fmt.Errorf("%w: %s", ErrNotYourSeat, seatID)
	}
	if g.state.Phase == engine.PhaseStopped {
		return engine.ErrRoundStopped
	}
	if seat != g.state.Turn {
		return fmt.Errorf("%w: seat %d acted on seat %d's turn", engine.ErrNotYourTurn, seat, g.state.Turn)
	}

	next, err := engine.Play(move, g.state)
	if err != nil {
		return err
	}
	g.cancelPendingBot()
	g.state = next
	g.version++
	g.logger.Debug("Card played",
		zap.String("seat", g.seats[seat].Name),
		zap.Stringer("card", move.Card),
		zap.Uint64("version", g.version),
		zap.String("phase", string(next.Phase)))

	g.afterChange()
	return nil
}

// startRound shuffles and deals until the deal is accepted. Assumes lock is held.
func (g *Game) startRound() error {
	ids := make([]string, len(g.seats))
	for i, s := range g.seats {
		ids[i] = s.ID
	}

	for attempt := 1; ; attempt++ {
		cards := shared.Shuffle(shared.NewDeck(), g.rng)
		state, err := engine.Deal(cards, engine.DealOptions{Players: len(g.seats), PlayerIDs: ids, Rand: g.rng})
		if errors.Is(err, engine.ErrDealRejected) {
			g.logger.Debug("Deal rejected, reshuffling", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("deal round: %w", err)
		}
		g.state = state
		break
	}

	g.version++
	g.rounds++
	g.logger.Info("Round started",
		zap.Int("round", g.rounds),
		zap.Uint64("version", g.version),
		zap.String("first", g.seats[g.state.Turn].Name))

	g.afterChange()
	return nil
}

// afterChange publishes the new state and hands the turn on. Assumes lock is held.
func (g *Game) afterChange() {
	g.broadcastGameState()
	if g.state.Phase == engine.PhaseStopped {
		g.endRound()
		return
	}
	g.notifyCurrentPlayerTurn()
	g.scheduleBot()
}

// scheduleBot starts thinking for the current seat if it is a bot. The move
// is applied against the version seen now. Assumes lock is held.
func (g *Game) scheduleBot() {
	seat := g.seats[g.state.Turn]
	if !seat.IsBot() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancelBot = cancel
	version := g.version
	decisions := g.thinker.Start(ctx, g.state, seat.Strategy)

	g.bots.Add(1)
	go func() {
		defer g.bots.Done()
		defer cancel()

		d := <-decisions
		if d.Err != nil {
			if errors.Is(d.Err, context.Canceled) {
				g.logger.Debug("Bot move canceled", zap.String("seat", seat.Name), zap.Uint64("version", version))
				return
			}
			g.logger.Error("Bot could not choose a move", zap.String("seat", seat.Name), zap.Error(d.Err))
			return
		}

		err := g.Apply(version, seat.ID, d.Move)
		switch {
		case err == nil:
		case errors.Is(err, ErrStaleState), errors.Is(err, ErrGameClosed):
			g.logger.Debug("Discarding stale bot move", zap.String("seat", seat.Name), zap.Error(err))
		default:
			g.logger.Error("Bot move rejected", zap.String("seat", seat.Name), zap.Stringer("card", d.Move.Card), zap.Error(err))
		}
	}()
}

func (g *Game) cancelPendingBot() {
	if g.cancelBot != nil {
		g.cancelBot()
		g.cancelBot = nil
	}
}

// unlock releases the lock, then records a round that finished while it was
// held. The recorder may block on I/O, so it never runs under the lock.
func (g *Game) unlock() {
	results := g.unrecorded
	g.unrecorded = nil
	g.mu.Unlock()

	if results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := g.recorder.Insert(ctx, results); err != nil {
		g.logger.Error("Failed to record round", zap.Error(err))
	}
}

// endRound scores the stopped round and queues its results for unlock.
// Assumes lock is held.
func (g *Game) endRound() {
	scores := scoring.Compute(g.state.Players)
	totals := make([]int, len(scores))
	for i, s := range scores {
		totals[i] = s.Total
	}
	g.logger.Info("Round finished", zap.Int("round", g.rounds), zap.Ints("totals", totals))

	endMsg, _ := protocol.NewMessage(protocol.TypeRoundEnd, protocol.RoundEndPayload{Scores: scores})
	g.broadcast(endMsg)

	if g.recorder != nil {
		g.unrecorded = g.results(scores)
	}
}

func (g *Game) results(scores []scoring.Score) []database.RoundResult {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	results := make([]database.RoundResult, len(scores))
	for i, s := range scores {
		results[i] = database.RoundResult{
			ID:         uuid.NewString(),
			GameID:     g.ID,
			CreatedAt:  createdAt,
			PlayerID:   s.PlayerID,
			PlayerName: g.seats[i].Name,
			Seat:       i,
			Scope:      s.Value(scoring.LabelScope),
			Captured:   s.Value(scoring.LabelCaptured),
			Denari:     s.Value(scoring.LabelDenari),
			SetteBello: s.Value(scoring.LabelSetteBello),
			Primiera:   s.Value(scoring.LabelPrimiera),
			Total:      s.Total,
		}
	}
	return results
}

// describe turns a rejected move into a message for the player.
func describe(err error) string {
	switch {
	case errors.Is(err, ErrStaleState):
		return "The game moved on before your move arrived."
	case errors.Is(err, engine.ErrRoundStopped):
		return "The round is over."
	case errors.Is(err, engine.ErrNotYourTurn):
		return "Not your turn."
	case errors.Is(err, engine.ErrAmbiguousCapture):
		return "Choose which cards to capture."
	case errors.Is(err, engine.ErrInvalidCapture):
		return "Those cards cannot be captured with that card."
	case errors.Is(err, ErrGameClosed):
		return "Game is over."
	default:
		return "Invalid move."
	}
}

// --- Messaging Helpers (Assume lock is held or called safely) ---

// broadcast sends a message to every client seat.
func (g *Game) broadcast(message []byte) {
	for _, s := range g.seats {
		if !s.IsBot() {
			g.sendToPlayer(s.ID, message)
		}
	}
}

func (g *Game) sendToPlayer(playerID string, message []byte) {
	if g.sendMessage == nil {
		return
	}
	g.sendMessage(playerID, message)
}

func (g *Game) sendErrorToPlayer(playerID string, errorMsg string) {
	msgBytes, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{Message: errorMsg})
	if err != nil {
		g.logger.Error("Failed to build error message", zap.String("client_id", playerID), zap.Error(err))
		return
	}
	g.sendToPlayer(playerID, msgBytes)
}

// broadcastGameState sends every client its own view of the table.
func (g *Game) broadcastGameState() {
	views := make([]protocol.SeatView, len(g.state.Players))
	for i, p := range g.state.Players {
		views[i] = protocol.SeatView{
			ID:            p.ID,
			HandCount:     len(p.Hand),
			CapturedCount: len(p.Captured),
			Scope:         p.Scope,
		}
	}

	for i, s := range g.seats {
		if s.IsBot() {
			continue
		}
		payload := protocol.GameStatePayload{
			Version:         g.version,
			Phase:           string(g.state.Phase),
			CurrentPlayerID: g.state.CurrentPlayer().ID,
			Table:           g.state.Table,
			DrawPileCount:   len(g.state.DrawPile),
			Hand:            g.state.Players[i].Hand,
			Seats:           views,
		}
		msgBytes, err := protocol.NewMessage(protocol.TypeGameState, payload)
		if err != nil {
			g.logger.Error("Failed to build game state", zap.Error(err))
			return
		}
		g.sendToPlayer(s.ID, msgBytes)
	}
}

// notifyCurrentPlayerTurn sends 'your_turn' with the legal plays to a client seat.
func (g *Game) notifyCurrentPlayerTurn() {
	current := g.seats[g.state.Turn]
	if current.IsBot() {
		return
	}

	options := bot.Options(g.state)
	moves := make([]protocol.PlayOption, len(options))
	for i, o := range options {
		moves[i] = protocol.PlayOption{Card: o.Card, Targets: o.Targets}
	}
	msgBytes, _ := protocol.NewMessage(protocol.TypeYourTurn, protocol.YourTurnPayload{
		PlayerID:   current.ID,
		Version:    g.version,
		ValidMoves: moves,
	})
	g.sendToPlayer(current.ID, msgBytes)
}

// seatIndex finds the seat of a player by ID. Returns -1 if not found.
func (g *Game) seatIndex(id string) int {
	for i, s := range g.seats {
		if s.ID == id {
			return i
		}
	}
	return -1
}
