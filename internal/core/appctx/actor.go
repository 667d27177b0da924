// Package appctx carries request-scoped values (acting user, trace ids)
// through context for audit stamping and log enrichment.
package appctx

import "context"

// Actor is the authenticated principal performing the request.
type Actor struct {
	UserID string
	Name   string
	Email  string
	Roles  []string
}

type actorKey struct{}

// WithActor adds the actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the actor from context, or nil.
func GetActor(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return a
	}
	return nil
}

// ActorID returns the acting user id, or "system" for background work.
func ActorID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil && a.UserID != "" {
		return a.UserID
	}
	return "system"
}

// HasRole reports whether the actor carries the role.
func HasRole(ctx context.Context, role string) bool {
	a := GetActor(ctx)
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
