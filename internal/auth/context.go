package auth

import (
	"context"
	"errors"
)

// WorkspaceClient is the downstream vendor client handle bound to a
// session. The concrete implementation lives in internal/copilot.
type WorkspaceClient interface {
	GetTokenPayload(ctx context.Context) (map[string]any, error)
}

// ClientFactory builds a client handle bound to a session token. An empty
// token yields an unauthenticated handle (non-enforcing environments only).
type ClientFactory func(token string) (WorkspaceClient, error)

type ctxKey int

const (
	ctxClaims ctxKey = iota
	ctxClient
)

func WithSession(ctx context.Context, claims *Claims, client WorkspaceClient) context.Context {
	ctx = context.WithValue(ctx, ctxClaims, claims)
	ctx = context.WithValue(ctx, ctxClient, client)
	return ctx
}

// ClaimsFrom returns the validated claims for the request. In non-enforcing
// environments no claims exist; callers must tolerate the error.
func ClaimsFrom(ctx context.Context) (*Claims, error) {
	if c, ok := ctx.Value(ctxClaims).(*Claims); ok && c != nil {
		return c, nil
	}
	return nil, errors.New("claims not in context")
}

func ClientFrom(ctx context.Context) (WorkspaceClient, error) {
	if c, ok := ctx.Value(ctxClient).(WorkspaceClient); ok && c != nil {
		return c, nil
	}
	return nil, errors.New("workspace client not in context")
}

// WorkspaceID is a convenience accessor for the tenant identifier.
func WorkspaceID(ctx context.Context) (string, error) {
	c, err := ClaimsFrom(ctx)
	if err != nil {
		return "", err
	}
	if c.WorkspaceID == "" {
		return "", errors.New("workspace_id not in claims")
	}
	return c.WorkspaceID, nil
}
