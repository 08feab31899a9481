// Package session owns the live games: it applies the player's moves,
// plays the computer opponent after a pacing delay, keeps the score and
// hands snapshots to whoever is watching.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/gridlockgames/tictactoe-backend/internal/apperror"
	"github.com/gridlockgames/tictactoe-backend/internal/engine"
	"github.com/gridlockgames/tictactoe-backend/internal/entity"
)

const (
	defaultSessionTTL = 24 * time.Hour
	sweepInterval     = 10 * time.Minute

	watchBuffer = 4
)

// Options tunes the hub.
type Options struct {
	// OpponentDelay paces the computer's reply so it does not land in
	// the same instant as the player's move.
	OpponentDelay time.Duration
	// SessionTTL is how long an untouched session survives before the
	// sweeper drops it.
	SessionTTL time.Duration
	// Seed pins the base of the per-session random streams; 0 derives
	// one at startup.
	Seed int64
}

// Hub is the session registry and the only writer of game state.
type Hub struct {
	logger *slog.Logger

	sessions *xsync.MapOf[string, *Session]
	seeds    *seedSource

	opponentDelay time.Duration
	sessionTTL    time.Duration
}

func NewHub(logger *slog.Logger, opts Options) *Hub {
	base := opts.Seed
	if base == 0 {
		base = secureBaseSeed()
	}

	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &Hub{
		logger:        logger.With("component", "session"),
		sessions:      xsync.NewMapOf[string, *Session](),
		seeds:         newSeedSource(base),
		opponentDelay: opts.OpponentDelay,
		sessionTTL:    ttl,
	}
}

// Create - starts a fresh session: empty board, player to move, zero score.
func (that *Hub) Create(ctx context.Context) (entity.Game, error) {
	id := uuid.NewString()

	rng := rand.New(rand.NewSource(that.seeds.next())) //nolint: gosec // move selection needs no crypto randomness
	s := &Session{
		id:         id,
		game:       entity.NewGame(id),
		selector:   engine.NewSelector(engine.PlayerO, rng),
		subs:       make(map[uint64]chan entity.Game),
		lastActive: time.Now(),
	}

	that.sessions.Store(id, s)
	that.logger.Info("session created", "gameID", id)

	return s.game.Snapshot(), nil
}

// Get - returns the session's current snapshot.
func (that *Hub) Get(ctx context.Context, id string) (entity.Game, error) {
	s, ok := that.sessions.Load(id)
	if !ok {
		return entity.Game{}, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()

	return s.game.Snapshot(), nil
}

// PlayerMove applies the player's move and, if the game is still in
// progress, schedules the opponent's reply after the pacing delay. The
// returned snapshot reflects the player's move only; the reply arrives
// through Watch or a later Get.
func (that *Hub) PlayerMove(ctx context.Context, id string, cell int) (entity.Game, error) {
	log := that.logger.With("method", "PlayerMove", "gameID", id)

	s, ok := that.sessions.Load(id)
	if !ok {
		return entity.Game{}, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	s.mu.Lock()

	if err := s.game.ApplyMove(engine.PlayerX, cell); err != nil {
		s.mu.Unlock()
		return entity.Game{}, fmt.Errorf("failed to apply move: %w", err)
	}

	s.lastActive = time.Now()
	snap := s.game.Snapshot()

	if s.game.IsInProgress() {
		generation := s.generation
		s.reply = time.AfterFunc(that.opponentDelay, func() {
			that.opponentReply(s, generation)
		})
	}

	s.broadcastLocked(snap)
	s.mu.Unlock()

	log.Debug("player move accepted", "cell", cell)

	return snap, nil
}

// opponentReply fires from the timer PlayerMove armed. It re-checks the
// generation under the session lock and drops itself when a reset (or
// expiry) got there first.
func (that *Hub) opponentReply(s *Session, generation uint64) {
	log := that.logger.With("method", "opponentReply", "gameID", s.id)

	s.mu.Lock()

	if generation != s.generation || !s.game.IsInProgress() {
		s.mu.Unlock()
		log.Debug("stale opponent reply dropped")
		return
	}

	cell, err := s.selector.SelectMove(s.game.Board)
	if err != nil {
		s.mu.Unlock()
		log.Error("failed to select opponent move", "error", err)
		return
	}

	if err = s.game.ApplyMove(s.selector.Mark(), cell); err != nil {
		s.mu.Unlock()
		log.Error("failed to apply opponent move", "error", err)
		return
	}

	s.lastActive = time.Now()
	snap := s.game.Snapshot()
	s.broadcastLocked(snap)
	s.mu.Unlock()

	log.Debug("opponent move applied", "cell", cell)
}

// Reset starts a new game in the same session. Any opponent reply still
// in flight is discarded; the score carries over.
func (that *Hub) Reset(ctx context.Context, id string) (entity.Game, error) {
	s, ok := that.sessions.Load(id)
	if !ok {
		return entity.Game{}, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	s.mu.Lock()

	s.generation++
	if s.reply != nil {
		// Best effort; a timer that already fired is fenced off by the
		// generation bump above.
		s.reply.Stop()
		s.reply = nil
	}

	s.game.Reset()
	s.lastActive = time.Now()
	snap := s.game.Snapshot()
	s.broadcastLocked(snap)
	s.mu.Unlock()

	that.logger.Info("game reset", "gameID", id)

	return snap, nil
}

// ResetScore zeroes the tally. The board and any pending opponent reply
// stay as they are.
func (that *Hub) ResetScore(ctx context.Context, id string) (entity.Game, error) {
	s, ok := that.sessions.Load(id)
	if !ok {
		return entity.Game{}, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	s.mu.Lock()

	s.game.ResetScore()
	s.lastActive = time.Now()
	snap := s.game.Snapshot()
	s.broadcastLocked(snap)
	s.mu.Unlock()

	that.logger.Info("score reset", "gameID", id)

	return snap, nil
}

// Watch subscribes to the session's accepted state changes, the delayed
// opponent move included. The channel closes when the returned stop
// function runs, ctx is done, or the session expires.
func (that *Hub) Watch(ctx context.Context, id string) (<-chan entity.Game, func(), error) {
	s, ok := that.sessions.Load(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	s.mu.Lock()
	subID := s.nextSub
	s.nextSub++
	ch := make(chan entity.Game, watchBuffer)
	s.subs[subID] = ch
	s.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	unsub := func() {
		once.Do(func() { close(done) })

		s.mu.Lock()
		if sub, open := s.subs[subID]; open {
			delete(s.subs, subID)
			close(sub)
		}
		s.mu.Unlock()
	}

	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-done:
		}
	}()

	return ch, unsub, nil
}

// Start runs the idle-session sweeper until ctx is done.
func (that *Hub) Start(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			that.expireIdleSessions(now)
		}
	}
}

func (that *Hub) expireIdleSessions(now time.Time) {
	that.sessions.Range(func(id string, s *Session) bool {
		s.mu.Lock()
		expired := now.Sub(s.lastActive) > that.sessionTTL
		if expired {
			s.closeLocked()
		}
		s.mu.Unlock()

		if expired {
			that.sessions.Delete(id)
			that.logger.Info("idle session expired", "gameID", id)
		}

		return true
	})
}
