// Package auth resolves and tracks the current user identity. The stores
// and services never consume the token stream itself; they only ever read
// the latest resolved identity at call time.
package auth

import (
	"context"
	"errors"
	"sync"
)

// Identity is the resolved user behind a verified token.
type Identity struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Token is a minimal interface for a verified token that can expose claims.
type Token interface {
	Claims(v interface{}) error
}

// Verifier validates a raw bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Authenticator holds the latest resolved identity and notifies watchers
// when it changes. Watch channels replay the current value on subscribe, so
// late subscribers converge immediately; the stream is restartable by
// subscribing again.
type Authenticator struct {
	verifier Verifier

	mu      sync.Mutex
	current *Identity
	watches map[int]chan Identity
	nextID  int
}

func NewAuthenticator(v Verifier) *Authenticator {
	return &Authenticator{verifier: v, watches: map[int]chan Identity{}}
}

// SignIn verifies the raw token and installs its identity as current.
func (a *Authenticator) SignIn(ctx context.Context, raw string) (Identity, error) {
	tok, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, err
	}
	var id Identity
	if err := tok.Claims(&id); err != nil {
		return Identity{}, err
	}
	if id.Sub == "" {
		return Identity{}, errors.New("token has no subject")
	}

	a.mu.Lock()
	a.current = &id
	a.notifyLocked(id)
	a.mu.Unlock()
	return id, nil
}

// SignOut clears the current identity. Watchers observe the zero Identity.
func (a *Authenticator) SignOut() {
	a.mu.Lock()
	a.current = nil
	a.notifyLocked(Identity{})
	a.mu.Unlock()
}

// Current returns the latest resolved identity, if any.
func (a *Authenticator) Current() (Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Identity{}, false
	}
	return *a.current, true
}

// Watch yields identity-change events until ctx is done. The current value
// is delivered first. Slow consumers miss intermediate events rather than
// blocking sign-in.
func (a *Authenticator) Watch(ctx context.Context) <-chan Identity {
	ch := make(chan Identity, 8)

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.watches[id] = ch
	if a.current != nil {
		ch <- *a.current
	} else {
		ch <- Identity{}
	}
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		delete(a.watches, id)
		a.mu.Unlock()
		close(ch)
	}()
	return ch
}

func (a *Authenticator) notifyLocked(id Identity) {
	for _, ch := range a.watches {
		select {
		case ch <- id:
		default:
		}
	}
}
