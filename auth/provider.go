// Package auth decides who may dispatch calls into the light client.
package auth

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthenticated is returned when a call carries no signed origin.
	ErrUnauthenticated = errors.New("unauthenticated origin")

	// ErrNotPrivileged is returned when a privileged call is dispatched by an
	// ordinary caller.
	ErrNotPrivileged = errors.New("caller is not privileged")
)

// RootCaller is the identity of root origins.
const RootCaller CallerID = "root"

// CallerID identifies an authenticated caller.
type CallerID string

// Origin is the unverified source of a dispatched call.
type Origin struct {
	// Account is the signing account, empty for unsigned calls.
	Account string

	// Root marks calls dispatched by the runtime itself.
	Root bool
}

//go:generate mockgen -source=provider.go -destination=mocks/provider.go -package=mocks

// Provider authenticates call origins.
type Provider interface {
	// Authenticate resolves the caller behind origin. Unsigned origins fail
	// with ErrUnauthenticated.
	Authenticate(origin Origin) (CallerID, error)

	// IsPrivileged reports whether caller may run privileged calls.
	IsPrivileged(caller CallerID) bool
}

// StaticProvider trusts every signed account and grants privileges to root
// origins plus a fixed set of accounts.
type StaticProvider struct {
	roots map[CallerID]struct{}
}

var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider returns a provider treating roots as privileged accounts.
func NewStaticProvider(roots ...string) *StaticProvider {
	p := &StaticProvider{roots: make(map[CallerID]struct{}, len(roots))}
	for _, root := range roots {
		if root = strings.TrimSpace(root); root != "" {
			p.roots[CallerID(root)] = struct{}{}
		}
	}
	return p
}

func (p *StaticProvider) Authenticate(origin Origin) (CallerID, error) {
	if origin.Root {
		return RootCaller, nil
	}
	if origin.Account == "" {
		return "", ErrUnauthenticated
	}
	return CallerID(origin.Account), nil
}

func (p *StaticProvider) IsPrivileged(caller CallerID) bool {
	if caller == RootCaller {
		return true
	}
	_, ok := p.roots[caller]
	return ok
}
