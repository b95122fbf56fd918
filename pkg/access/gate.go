// Package access decides whether the contact store may be used before any
// synchronization runs.
package access

import (
	"context"
	"fmt"

	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"github.com/rs/zerolog"
)

// Decision is the single answer a Gate produces.
type Decision struct {
	Granted bool
	// Prompted is true when the store was asked for permission.
	Prompted bool
	Err      error
}

// Gate checks authorization and prompts for it when needed.
type Gate struct {
	auth   contactstore.Authorizer
	logger zerolog.Logger
}

func NewGate(auth contactstore.Authorizer, logger zerolog.Logger) *Gate {
	return &Gate{
		auth:   auth,
		logger: logger.With().Str("component", "access").Logger(),
	}
}

// ShouldPrompt reports whether a status requires a permission request.
func ShouldPrompt(status contactstore.AuthStatus) bool {
	return status != contactstore.AuthStatusAuthorized
}

// Request starts the access check. The returned channel delivers exactly one
// Decision and is then closed.
func (g *Gate) Request(ctx context.Context) <-chan Decision {
	out := make(chan Decision, 1)
	go func() {
		defer close(out)
		out <- g.decide(ctx)
	}()
	return out
}

// EnsureAccess blocks until the access decision is known or ctx is done.
func (g *Gate) EnsureAccess(ctx context.Context) (bool, error) {
	select {
	case d := <-g.Request(ctx):
		return d.Granted, d.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (g *Gate) decide(ctx context.Context) Decision {
	status, err := g.auth.AuthorizationStatus(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Could not read authorization status, prompting")
		status = contactstore.AuthStatusUnknown
	}
	if !ShouldPrompt(status) {
		return Decision{Granted: true}
	}

	g.logger.Info().Str("status", string(status)).Msg("Requesting contact store access")
	granted, err := g.auth.RequestAccess(ctx)
	if err != nil {
		return Decision{Prompted: true, Err: fmt.Errorf("access request failed: %w", err)}
	}
	return Decision{Granted: granted, Prompted: true}
}
