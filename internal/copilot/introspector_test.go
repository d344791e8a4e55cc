package copilot

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	now := time.Unix(1700000000, 0).UTC()
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"sub":         "user-1",
		"workspaceId": "ws-1",
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

// countingTransport counts round trips on the shared client.
type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (ct *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ct.calls++
	return ct.next.RoundTrip(req)
}

func TestIntrospector_SharesOneTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"sub": r.URL.Query().Get("token"),
		})
	}))
	defer srv.Close()

	transport := &countingTransport{next: srv.Client().Transport}
	intro := NewIntrospector(Config{
		APIKey:     "key-1",
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Transport: transport},
	})

	for _, tok := range []string{"tok-a", "tok-b"} {
		payload, err := intro.Introspect(context.Background(), tok)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if payload["sub"] != tok {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	}
	if transport.calls != 2 {
		t.Fatalf("expected both introspections on the shared transport, got %d calls", transport.calls)
	}
}

func TestIntrospector_RequiresToken(t *testing.T) {
	intro := NewIntrospector(Config{APIKey: "key-1"})
	if _, err := intro.Introspect(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestUnverifiedIntrospector_DecodesClaims(t *testing.T) {
	payload, err := UnverifiedIntrospector{}.Introspect(context.Background(), mintToken(t))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if payload["sub"] != "user-1" || payload["workspaceId"] != "ws-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestUnverifiedIntrospector_RejectsGarbage(t *testing.T) {
	if _, err := (UnverifiedIntrospector{}).Introspect(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("expected decode error")
	}
}
