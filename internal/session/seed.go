package session

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"sync"
	"time"
)

// seedSource derives independent per-session seeds from one base seed
// with splitmix64 steps, so pinning the base replays every session's
// move stream.
type seedSource struct {
	mu    sync.Mutex
	state uint64
}

func newSeedSource(base int64) *seedSource {
	return &seedSource{state: uint64(base)}
}

func (that *seedSource) next() int64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state += 0x9E3779B97F4A7C15
	z := that.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31

	return int64(z)
}

// secureBaseSeed picks a base seed for when the config does not pin one.
func secureBaseSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return int64(binary.LittleEndian.Uint64(b[:]) ^ uint64(time.Now().UnixNano()) ^ uint64(os.Getpid()))
	}

	return time.Now().UnixNano()
}
