package copilot

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Introspector satisfies the token validation service's introspection
// capability by delegating to the vendor API, which performs signature
// verification.
type Introspector struct {
	client *Client
}

// NewIntrospector builds the client once; all introspections share its
// transport instead of opening fresh connections per token.
func NewIntrospector(cfg Config) *Introspector {
	return &Introspector{client: NewClient(cfg, "")}
}

func (i *Introspector) Introspect(ctx context.Context, token string) (map[string]any, error) {
	return i.client.TokenPayload(ctx, token)
}

// UnverifiedIntrospector decodes claims locally without signature
// verification. It exists for non-enforcing environments where the request
// authorizer skips validation anyway and for offline development against
// self-minted tokens. Never wire it where validation is enforced.
type UnverifiedIntrospector struct{}

func (UnverifiedIntrospector) Introspect(_ context.Context, token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("token decode failed: %w", err)
	}
	return map[string]any(claims), nil
}
