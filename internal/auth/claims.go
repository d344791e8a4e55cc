package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxTokenAge bounds session lifetime regardless of the token's own
// expiry claim.
const DefaultMaxTokenAge = 7 * 24 * time.Hour

// Claims are the decoded assertions carried by a validated session token.
// WorkspaceID scopes all tenant data access; CSRF binds state-changing
// requests to this session. Extra payload fields pass through in Raw
// unvalidated.
type Claims struct {
	Subject     string
	ExpiresAt   int64
	IssuedAt    int64
	WorkspaceID string
	CSRF        string

	Raw map[string]any
}

var (
	ErrPayloadMissing   = errors.New("Token payload is missing")
	ErrTokenExpired     = errors.New("Token has expired")
	ErrUsedBeforeIssued = errors.New("Token used before issued")
	ErrTokenTooOld      = errors.New("Token is too old")
)

// requiredClaims are checked in this order; the first absent one names the
// returned error.
var requiredClaims = []string{"exp", "sub", "iat"}

// ValidateClaims checks the payload returned by token introspection.
//
// Expiry, future-issuance, and max-age failures still return the decoded
// claims alongside the error so callers can log identity from a
// technically-invalid token; the error return stays authoritative for
// access decisions.
func ValidateClaims(payload map[string]any, now time.Time, maxAge time.Duration) (*Claims, error) {
	if len(payload) == 0 {
		return nil, ErrPayloadMissing
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxTokenAge
	}

	for _, name := range requiredClaims {
		if !hasClaim(payload, name) {
			return nil, fmt.Errorf("Missing required claim: %s", name)
		}
	}

	claims := &Claims{
		Subject: stringClaim(payload, "sub"),
		Raw:     payload,
	}
	claims.ExpiresAt, _ = numericClaim(payload, "exp")
	claims.IssuedAt, _ = numericClaim(payload, "iat")
	claims.WorkspaceID = stringClaim(payload, "workspaceId")
	claims.CSRF = stringClaim(payload, "csrf")

	nowSec := now.Unix()
	if claims.ExpiresAt <= nowSec {
		return claims, ErrTokenExpired
	}
	if claims.IssuedAt > nowSec {
		return claims, ErrUsedBeforeIssued
	}
	if nowSec-claims.IssuedAt > int64(maxAge/time.Second) {
		return claims, ErrTokenTooOld
	}
	return claims, nil
}

// hasClaim requires the claim to be present with a usable value: numeric
// for exp/iat, non-empty string for sub.
func hasClaim(payload map[string]any, name string) bool {
	v, ok := payload[name]
	if !ok || v == nil {
		return false
	}
	switch name {
	case "exp", "iat":
		_, ok := numericClaim(payload, name)
		return ok
	default:
		s, ok := v.(string)
		return ok && s != ""
	}
}

func stringClaim(payload map[string]any, name string) string {
	s, _ := payload[name].(string)
	return s
}

func numericClaim(payload map[string]any, name string) (int64, bool) {
	switch v := payload[name].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
