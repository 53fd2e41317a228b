// internal/game/room.go
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jason-s-yu/highcard/internal/models"
)

const (
	// MaxPlayers is the hard cap on room membership.
	MaxPlayers = 4
	// MinPlayers is the minimum membership required to start a game.
	MinPlayers = 2

	// DefaultWinScore is the score at which a player wins the overall game.
	DefaultWinScore = 3
	// DefaultCardMax is the top of the card range; draws are uniform in [1, CardMax].
	DefaultCardMax = 10
	// DefaultRoundCooldown is the pause between a resolved round and the next one.
	DefaultRoundCooldown = 2 * time.Second
)

// Errors surfaced to the initiating connection via an error event.
// None of them mutate room state before being returned.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrGameStarted  = errors.New("game already in progress")
	ErrRoomFull     = errors.New("room is full")
	ErrNotYourTurn  = errors.New("it's not your turn")
)

// Room holds the entire state for a single game session in memory.
//
// All mutation is serialized under Mu; methods with an Unsafe suffix
// assume the caller already holds it. The room never touches the
// transport directly: the gateway injects BroadcastFn when it wires the
// room into a broadcast group.
type Room struct {
	ID string

	// Players in join order; join order defines turn order.
	Players []*models.Player

	Started            bool
	CurrentPlayerIndex int
	RoundInProgress    bool

	WinScore int
	CardMax  int
	Cooldown time.Duration

	// DrawCard, when set, replaces the uniform card draw. Tests supply a
	// deterministic sequence here.
	DrawCard func() int

	// BroadcastFn sends an event to every connection in the room's group.
	// If nil, no broadcast is done.
	BroadcastFn func(ev GameEvent)

	// OnEmpty is called after the last player leaves. Typically assigned
	// by the code that creates & stores this room, e.g. via
	//   room.OnEmpty = func(roomID string) { store.DeleteRoom(roomID) }
	OnEmpty func(roomID string)

	clock         clockwork.Clock
	cooldownTimer clockwork.Timer

	Mu sync.Mutex
}

// NewRoom builds an empty room with default rules. A nil clock falls
// back to the real one.
func NewRoom(id string, clock clockwork.Clock) *Room {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Room{
		ID:       id,
		Players:  []*models.Player{},
		WinScore: DefaultWinScore,
		CardMax:  DefaultCardMax,
		Cooldown: DefaultRoundCooldown,
		clock:    clock,
	}
}

// AddPlayer appends a new player in join order. It fails once the game
// has started or the room is full, leaving state untouched.
func (r *Room) AddPlayer(playerID uuid.UUID, name string) (*models.Player, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Started {
		return nil, ErrGameStarted
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	p := &models.Player{ID: playerID, Name: name}
	r.Players = append(r.Players, p)
	return p, nil
}

// BroadcastPlayers pushes the current player list to the whole room.
func (r *Room) BroadcastPlayers() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.broadcastPlayersUnsafe()
}

// ToggleReady flips a player's ready flag. When at least MinPlayers are
// present and everyone is ready, the game starts. The updated player
// list is broadcast either way. Unknown players are a no-op.
func (r *Room) ToggleReady(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.findPlayerUnsafe(playerID)
	if p == nil {
		return
	}
	p.Ready = !p.Ready

	allReady := len(r.Players) >= MinPlayers
	for _, q := range r.Players {
		if !q.Ready {
			allReady = false
			break
		}
	}
	if allReady && !r.Started {
		r.startGameUnsafe()
	}

	r.broadcastPlayersUnsafe()
}

// PlayCard draws a card for the acting player. Acting out of turn
// returns ErrNotYourTurn without mutating anything; acting while no game
// is running is silently discarded. After the last player in turn order
// acts, the round resolves under the same lock.
func (r *Room) PlayCard(playerID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.Started || len(r.Players) == 0 {
		return nil
	}

	current := r.Players[r.CurrentPlayerIndex]
	if current.ID != playerID {
		return ErrNotYourTurn
	}

	card := r.drawCardUnsafe()
	current.Card = &card

	r.broadcastUnsafe(GameEvent{
		Type:       EventCardPlayed,
		PlayerID:   current.ID.String(),
		PlayerName: current.Name,
		Card:       card,
	})

	if r.CurrentPlayerIndex < len(r.Players)-1 {
		r.CurrentPlayerIndex++
		r.broadcastUnsafe(GameEvent{
			Type:          EventNextTurn,
			CurrentPlayer: r.snapshotPlayerUnsafe(r.Players[r.CurrentPlayerIndex]),
		})
	} else {
		r.resolveRoundUnsafe()
	}
	return nil
}

// HandleDisconnect removes a player and reconciles the turn state.
// Returns false if the player was not in this room.
func (r *Room) HandleDisconnect(playerID uuid.UUID) bool {
	r.Mu.Lock()

	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.Mu.Unlock()
		return false
	}

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if len(r.Players) == 0 {
		r.cancelCooldownUnsafe()
		onEmpty := r.OnEmpty
		r.Mu.Unlock()
		// Invoke outside the lock: the callback typically deletes the
		// room from the store, which calls back into Stop.
		if onEmpty != nil {
			onEmpty(r.ID)
		}
		return true
	}

	r.broadcastUnsafe(GameEvent{Type: EventPlayerLeft, PlayerID: playerID.String()})
	r.broadcastPlayersUnsafe()

	if r.Started && len(r.Players) == 1 {
		// Last player standing wins by forfeit. Scores are kept.
		r.broadcastUnsafe(GameEvent{
			Type:    EventGameOver,
			Winner:  r.snapshotPlayerUnsafe(r.Players[0]),
			Message: "You win! Other players left.",
		})
		r.Started = false
		r.RoundInProgress = false
		r.cancelCooldownUnsafe()
	}

	if r.Started && idx <= r.CurrentPlayerIndex {
		// Best-effort reindex: keeps the pointer in range but does not
		// guarantee the original turn order resumes at the "right" seat.
		r.CurrentPlayerIndex = r.CurrentPlayerIndex % len(r.Players)
		r.broadcastUnsafe(GameEvent{
			Type:          EventNextTurn,
			CurrentPlayer: r.snapshotPlayerUnsafe(r.Players[r.CurrentPlayerIndex]),
		})
	}

	r.Mu.Unlock()
	return true
}

// Stop cancels any pending cooldown transition. Called by the store when
// the room is deleted so no timer fires into a dead audience.
func (r *Room) Stop() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.cancelCooldownUnsafe()
}

// startGameUnsafe resets per-game state and begins the first round.
// Assumes lock is held.
func (r *Room) startGameUnsafe() {
	for _, p := range r.Players {
		p.Score = 0
		p.Card = nil
	}
	r.CurrentPlayerIndex = 0
	r.Started = true
	r.RoundInProgress = true

	r.broadcastUnsafe(GameEvent{
		Type:          EventGameStarted,
		Message:       "Game has started!",
		CurrentPlayer: r.snapshotPlayerUnsafe(r.Players[0]),
	})
}

// resolveRoundUnsafe runs the round resolver and drives the follow-up
// transition. Assumes lock is held, which also guarantees resolutions
// for one room never overlap.
func (r *Room) resolveRoundUnsafe() {
	outcome := ResolveRound(r.Players, r.WinScore)

	winners := make([]*models.Player, len(outcome.Winners))
	for i, w := range outcome.Winners {
		winners[i] = r.snapshotPlayerUnsafe(w)
	}
	r.broadcastUnsafe(GameEvent{
		Type:    EventRoundResult,
		Winners: winners,
		Players: r.playersSnapshotUnsafe(),
	})

	if outcome.GameWinner != nil {
		r.broadcastUnsafe(GameEvent{
			Type:    EventGameOver,
			Winner:  r.snapshotPlayerUnsafe(outcome.GameWinner),
			Message: fmt.Sprintf("%s wins the game!", outcome.GameWinner.Name),
		})

		// Back to the lobby: the room persists, the game state does not.
		r.Started = false
		r.RoundInProgress = false
		for _, p := range r.Players {
			p.Ready = false
			p.Score = 0
			p.Card = nil
		}
		return
	}

	for _, p := range r.Players {
		p.Card = nil
	}
	r.CurrentPlayerIndex = 0
	r.RoundInProgress = false
	r.scheduleNextRoundUnsafe()
}

// scheduleNextRoundUnsafe arms the cooldown timer that begins the next
// round. The timer reference doubles as a staleness guard: a fired timer
// that is no longer the room's current one does nothing. Assumes lock is
// held.
func (r *Room) scheduleNextRoundUnsafe() {
	var timer clockwork.Timer
	timer = r.clock.AfterFunc(r.Cooldown, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()

		if r.cooldownTimer != timer {
			return // cancelled or replaced while firing
		}
		r.cooldownTimer = nil

		if !r.Started || len(r.Players) == 0 {
			// Forfeit or mass disconnect during the cooldown ended the
			// game; there is no next round to announce.
			return
		}

		r.RoundInProgress = true
		r.broadcastUnsafe(GameEvent{
			Type:          EventNextRound,
			CurrentPlayer: r.snapshotPlayerUnsafe(r.Players[0]),
		})
	})
	r.cooldownTimer = timer
}

// cancelCooldownUnsafe stops any pending cooldown. Assumes lock is held.
func (r *Room) cancelCooldownUnsafe() {
	if r.cooldownTimer != nil {
		r.cooldownTimer.Stop()
		r.cooldownTimer = nil
	}
}

func (r *Room) drawCardUnsafe() int {
	if r.DrawCard != nil {
		return r.DrawCard()
	}
	return rand.Intn(r.CardMax) + 1
}

func (r *Room) findPlayerUnsafe(playerID uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) broadcastUnsafe(ev GameEvent) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

func (r *Room) broadcastPlayersUnsafe() {
	r.broadcastUnsafe(GameEvent{
		Type:    EventPlayersUpdate,
		Players: r.playersSnapshotUnsafe(),
	})
}

// playersSnapshotUnsafe returns value copies of every player so outbound
// events serialize the state as of broadcast time, not as of whenever
// the write pump drains its channel. Assumes lock is held.
func (r *Room) playersSnapshotUnsafe() []*models.Player {
	out := make([]*models.Player, len(r.Players))
	for i, p := range r.Players {
		out[i] = r.snapshotPlayerUnsafe(p)
	}
	return out
}

func (r *Room) snapshotPlayerUnsafe(p *models.Player) *models.Player {
	cp := *p
	if p.Card != nil {
		v := *p.Card
		cp.Card = &v
	}
	return &cp
}
