package session

import (
	"sync"
	"time"

	"github.com/gridlockgames/tictactoe-backend/internal/engine"
	"github.com/gridlockgames/tictactoe-backend/internal/entity"
)

// Session is one live game and the plumbing around it. All mutation
// happens under mu; readers only ever get snapshots.
type Session struct {
	mu sync.Mutex

	id       string
	game     *entity.Game
	selector *engine.Selector

	// generation fences delayed opponent replies: a reply captures the
	// value at scheduling time and drops itself if it no longer matches
	// when it fires, so a stale result can never clobber a fresher board.
	generation uint64
	reply      *time.Timer

	subs    map[uint64]chan entity.Game
	nextSub uint64

	lastActive time.Time
}

// broadcastLocked fans a snapshot out to every subscriber. Subscribers
// that stopped draining lose their subscription rather than block the
// session. Callers hold mu.
func (that *Session) broadcastLocked(snap entity.Game) {
	for id, ch := range that.subs {
		select {
		case ch <- snap:
		default:
			delete(that.subs, id)
			close(ch)
		}
	}
}

// closeLocked cancels any pending opponent reply and closes every
// subscriber channel. Callers hold mu.
func (that *Session) closeLocked() {
	that.generation++

	if that.reply != nil {
		that.reply.Stop()
		that.reply = nil
	}

	for id, ch := range that.subs {
		delete(that.subs, id)
		close(ch)
	}
}
