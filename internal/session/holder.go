// Package session provides the process-wide login slot. There is exactly
// one slot: logging in writes it, logging out clears it, and a second login
// silently replaces the first. This mirrors the original tool's behavior on
// purpose; it is not a per-connection session table.
package session

import (
	"context"
	"sync"
)

// Holder stores at most one logged-in username.
type Holder interface {
	// Current returns the logged-in username, or "" and false when nobody
	// is logged in.
	Current(ctx context.Context) (string, bool)
	// Set replaces the slot with user.
	Set(ctx context.Context, user string) error
	// Clear empties the slot.
	Clear(ctx context.Context) error
}

// MemoryHolder keeps the slot in process memory. It is the default backend
// and loses the login on restart.
type MemoryHolder struct {
	mu   sync.Mutex
	user string
}

func NewMemoryHolder() *MemoryHolder {
	return &MemoryHolder{}
}

func (h *MemoryHolder) Current(ctx context.Context) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.user, h.user != ""
}

func (h *MemoryHolder) Set(ctx context.Context, user string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.user = user
	return nil
}

func (h *MemoryHolder) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.user = ""
	return nil
}
