package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testNow = time.Unix(1700000000, 0).UTC()

func validPayload() map[string]any {
	return map[string]any{
		"sub":         "user-1",
		"exp":         float64(testNow.Unix() + 3600),
		"iat":         float64(testNow.Unix() - 60),
		"workspaceId": "ws-1",
		"csrf":        "csrf-abc",
	}
}

func TestValidateClaims_RejectsMissingPayload(t *testing.T) {
	if _, err := ValidateClaims(nil, testNow, 0); !errors.Is(err, ErrPayloadMissing) {
		t.Fatalf("expected payload-missing error, got %v", err)
	}
	if _, err := ValidateClaims(map[string]any{}, testNow, 0); !errors.Is(err, ErrPayloadMissing) {
		t.Fatalf("expected payload-missing error, got %v", err)
	}
}

func TestValidateClaims_NamesFirstMissingClaim(t *testing.T) {
	for _, name := range []string{"exp", "sub", "iat"} {
		p := validPayload()
		delete(p, name)
		_, err := ValidateClaims(p, testNow, 0)
		if err == nil || !strings.Contains(err.Error(), "Missing required claim: "+name) {
			t.Fatalf("expected missing-claim error for %s, got %v", name, err)
		}
	}
}

func TestValidateClaims_RejectsExpired(t *testing.T) {
	p := validPayload()
	p["exp"] = float64(testNow.Unix() - 60)
	claims, err := ValidateClaims(p, testNow, 0)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	// Identity is still decodable for audit logging.
	if claims == nil || claims.Subject != "user-1" {
		t.Fatalf("expected claims alongside expiry failure, got %+v", claims)
	}
}

func TestValidateClaims_RejectsFutureIssuance(t *testing.T) {
	p := validPayload()
	p["iat"] = float64(testNow.Unix() + 60)
	claims, err := ValidateClaims(p, testNow, 0)
	if !errors.Is(err, ErrUsedBeforeIssued) {
		t.Fatalf("expected used-before-issued error, got %v", err)
	}
	if claims == nil {
		t.Fatalf("expected claims alongside failure")
	}
}

func TestValidateClaims_RejectsTooOld(t *testing.T) {
	p := validPayload()
	p["iat"] = float64(testNow.Add(-8 * 24 * time.Hour).Unix())
	p["exp"] = float64(testNow.Unix() + 3600)
	claims, err := ValidateClaims(p, testNow, 0)
	if !errors.Is(err, ErrTokenTooOld) {
		t.Fatalf("expected too-old error, got %v", err)
	}
	if claims == nil {
		t.Fatalf("expected claims alongside failure")
	}
}

func TestValidateClaims_AcceptsValidToken(t *testing.T) {
	claims, err := ValidateClaims(validPayload(), testNow, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if claims.Subject != "user-1" || claims.WorkspaceID != "ws-1" || claims.CSRF != "csrf-abc" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Raw["workspaceId"] != "ws-1" {
		t.Fatalf("expected raw payload passthrough")
	}
}

func TestValidateClaims_NumericClaimTypes(t *testing.T) {
	p := validPayload()
	p["exp"] = int64(testNow.Unix() + 3600)
	p["iat"] = int(testNow.Unix() - 60)
	if _, err := ValidateClaims(p, testNow, 0); err != nil {
		t.Fatalf("expected integer claim types to validate, got %v", err)
	}

	p["exp"] = "not a number"
	_, err := ValidateClaims(p, testNow, 0)
	if err == nil || !strings.Contains(err.Error(), "Missing required claim: exp") {
		t.Fatalf("expected non-numeric exp to read as missing, got %v", err)
	}
}
