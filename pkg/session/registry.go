package session

import "sync"

// Registry is the process-wide set of currently honored tokens. A token is
// only valid while it is present here AND still passes signature/expiry
// checks; the registry itself never inspects or expires entries. It starts
// empty and its contents are lost on restart.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]struct{})}
}

// Register marks a token as active. Safe for concurrent use.
func (r *Registry) Register(token string) {
	r.mu.Lock()
	r.tokens[token] = struct{}{}
	r.mu.Unlock()
}

// Active reports whether the token is currently registered.
func (r *Registry) Active(token string) bool {
	r.mu.RLock()
	_, ok := r.tokens[token]
	r.mu.RUnlock()
	return ok
}

// Revoke removes a token. Revoking an unknown token is a no-op.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	delete(r.tokens, token)
	r.mu.Unlock()
}
