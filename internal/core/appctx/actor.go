// Package appctx provides request-scoped values carried through
// context.Context: the authenticated actor and tracing identifiers.
//
// Coordinators read audit identity (closedBy, createdBy) from here.
// Client-supplied values for those fields are always discarded.
package appctx

import (
	"context"
)

// ActorSource identifies how the actor was authenticated.
type ActorSource string

const (
	// SourceSession is a staff user authenticated via the web session token.
	SourceSession ActorSource = "session"

	// SourceAPIKey is the mobile assistant authenticated via an API key.
	SourceAPIKey ActorSource = "api_key"
)

// Actor contains the authenticated caller's identity.
type Actor struct {
	// ID is the user id for sessions, or the API key id for keyed calls.
	ID string

	// Name is a display name (user email or API key name).
	Name string

	Source      ActorSource
	Permissions []string
	IsAdmin     bool
}

// HasPermission checks the actor's flat permission set.
// Session users and admin keys implicitly hold every permission.
func (a *Actor) HasPermission(perm string) bool {
	if a == nil {
		return false
	}
	if a.IsAdmin || a.Source == SourceSession {
		return true
	}
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

type actorContextKey struct{}

// WithActor adds the Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns the Actor from context, or nil if unauthenticated.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetActorID returns the actor id from context or empty string.
func GetActorID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.ID
	}
	return ""
}
