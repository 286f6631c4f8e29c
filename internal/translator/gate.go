package translator

import "sync"

// RunKey is the admission key shared by every set-translation trigger. One
// run at a time, service-wide, regardless of which set it targets.
const RunKey = "translate_set"

// Gate is a single-flight admission check. TryStart admits at most one
// holder per key until Finish releases it.
type Gate struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewGate() *Gate {
	return &Gate{running: make(map[string]struct{})}
}

// TryStart reports whether the caller was admitted. An admitted caller must
// call Finish with the same key, on every exit path.
func (g *Gate) TryStart(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.running[key]; held {
		return false
	}
	g.running[key] = struct{}{}
	return true
}

// Finish releases the key. Releasing a key that is not held is a no-op.
func (g *Gate) Finish(key string) {
	g.mu.Lock()
	delete(g.running, key)
	g.mu.Unlock()
}
