package session

import (
	"sync"

	"github.com/yukikurage/teamtask/internal/client"
)

type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
)

// State is a snapshot of the session.
type State struct {
	Token  string
	User   *client.User
	Status Status
	Error  string
}

// Role returns the user's role, or "" when signed out.
func (s State) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Teams returns the teams loaded on the user.
func (s State) Teams() []client.TeamSummary {
	if s.User == nil {
		return nil
	}
	return s.User.Teams
}

// Holder owns the session state. Reads are safe from any goroutine;
// writes come from Manager and from Expire.
type Holder struct {
	mu       sync.RWMutex
	state    State
	subs     map[uint64]func(Status)
	nextSub  uint64
	onExpire func()
}

func NewHolder() *Holder {
	return &Holder{
		state: State{Status: StatusUnauthenticated},
		subs:  make(map[uint64]func(Status)),
	}
}

// Token implements client.Credentials.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Token
}

// Expire implements client.Credentials. It clears the session only if token
// is still the current one, so repeated or stale calls are no-ops.
func (h *Holder) Expire(token string) {
	h.mu.Lock()
	if token == "" || h.state.Token != token {
		h.mu.Unlock()
		return
	}
	h.state = State{Status: StatusUnauthenticated}
	hook := h.onExpire
	subs := h.subscribers()
	h.mu.Unlock()

	if hook != nil {
		hook()
	}
	notify(subs, StatusUnauthenticated)
}

func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (h *Holder) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Status
}

func (h *Holder) IsAuthenticated() bool {
	return h.Status() == StatusAuthenticated
}

// UserID returns the signed-in user's id, or 0.
func (h *Holder) UserID() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state.User == nil || h.state.Status != StatusAuthenticated {
		return 0
	}
	return h.state.User.ID
}

// Subscribe registers fn for status transitions and returns its cancel func.
func (h *Holder) Subscribe(fn func(Status)) func() {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// update applies fn under the lock and notifies subscribers if the status changed.
func (h *Holder) update(fn func(*State)) {
	h.mu.Lock()
	prev := h.state.Status
	fn(&h.state)
	next := h.state.Status
	var subs []func(Status)
	if next != prev {
		subs = h.subscribers()
	}
	h.mu.Unlock()

	notify(subs, next)
}

func (h *Holder) setExpireHook(fn func()) {
	h.mu.Lock()
	h.onExpire = fn
	h.mu.Unlock()
}

func (h *Holder) subscribers() []func(Status) {
	out := make([]func(Status), 0, len(h.subs))
	for _, fn := range h.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Status), s Status) {
	for _, fn := range subs {
		fn(s)
	}
}
