// Package execctx scopes a privileged system identity to the lifetime of one
// request. Identities travel in the context, so nested scopes restore the
// outer identity when they end.
package execctx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrNoProvider is returned by RunAs when no Provider is configured.
var ErrNoProvider = errors.New("execctx: provider is nil")

// Identity is the acting user for downstream calls.
type Identity struct {
	Username string
	System   bool
}

// Release ends an acquired scope. It is safe to call more than once.
type Release func()

// Provider grants a scoped identity.
type Provider interface {
	Acquire(ctx context.Context) (context.Context, Release, error)
}

type identityKey struct{}

// ContextWithIdentity returns a child context carrying id.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity carried by ctx.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// RunAs acquires a scope from p, runs fn inside it and releases the scope on
// every exit path, including a panic in fn.
func RunAs(ctx context.Context, p Provider, fn func(ctx context.Context) error) error {
	if p == nil {
		return ErrNoProvider
	}
	scoped, release, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(scoped)
}

// SystemProvider grants a fixed system identity and tracks open scopes.
type SystemProvider struct {
	identity Identity
	active   atomic.Int64
}

var _ Provider = (*SystemProvider)(nil)

// NewSystemProvider returns a provider acting as username.
func NewSystemProvider(username string) (*SystemProvider, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("execctx: system username is required")
	}
	return &SystemProvider{identity: Identity{Username: username, System: true}}, nil
}

// Acquire returns a context carrying the system identity.
func (p *SystemProvider) Acquire(ctx context.Context) (context.Context, Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	p.active.Add(1)
	var once sync.Once
	release := func() {
		once.Do(func() { p.active.Add(-1) })
	}
	return ContextWithIdentity(ctx, p.identity), release, nil
}

// Active reports the number of scopes not yet released.
func (p *SystemProvider) Active() int64 {
	return p.active.Load()
}

// Identity returns the identity granted by the provider.
func (p *SystemProvider) Identity() Identity {
	return p.identity
}
