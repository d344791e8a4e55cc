package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ceartscore-platform/internal/audit"
	"ceartscore-platform/internal/config"

	"github.com/gin-gonic/gin"
)

type fakeClient struct{}

func (fakeClient) GetTokenPayload(context.Context) (map[string]any, error) {
	return nil, nil
}

func testFactory(token string) (WorkspaceClient, error) {
	return fakeClient{}, nil
}

func newTestRouter(t *testing.T, a Authorizer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/v1")
	g.Use(a.RequireSession())
	g.Use(a.RequireCSRF())
	g.GET("/probe", func(c *gin.Context) {
		wid, _ := WorkspaceID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"workspace_id": wid})
	})
	g.POST("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func enforcingAuthorizer(intro Introspector, opts ...ValidatorOption) Authorizer {
	opts = append(opts, WithClock(testClock()))
	return Authorizer{
		Validator: NewValidator(intro, opts...),
		Policy:    config.ValidationPolicy{Enforce: true, Environment: "production"},
		Factory:   testFactory,
	}
}

func doRequest(r *gin.Engine, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession_MissingTokenIs401(t *testing.T) {
	r := newTestRouter(t, enforcingAuthorizer(&fakeIntrospector{payload: validPayload()}))

	w := doRequest(r, http.MethodGet, "/v1/probe", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Session token is required") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRequireSession_InvalidTokenIs401(t *testing.T) {
	r := newTestRouter(t, enforcingAuthorizer(&fakeIntrospector{payload: validPayload()}))

	w := doRequest(r, http.MethodGet, "/v1/probe?token=firstsegment.secondsegment", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "three parts") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRequireSession_RateLimitedIs429(t *testing.T) {
	a := enforcingAuthorizer(&fakeIntrospector{payload: validPayload()}, WithLimiter(stubLimiter{limited: true}))
	repo := audit.NewMemoryRepo()
	a.Audit = audit.NewService(repo)
	r := newTestRouter(t, a)

	w := doRequest(r, http.MethodGet, "/v1/probe?token="+wellFormedToken(), map[string]string{
		"X-Forwarded-For": "203.0.113.7",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Too many authentication attempts") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	events := repo.Events()
	if len(events) != 1 || events[0].Type != audit.EventTypeAuthFailure {
		t.Fatalf("expected one auth_failure audit event, got %+v", events)
	}
	if events[0].IPAddress != "203.0.113.7" {
		t.Fatalf("expected forwarded-for IP in audit record, got %q", events[0].IPAddress)
	}
}

func TestRequireSession_ValidTokenInjectsIdentity(t *testing.T) {
	r := newTestRouter(t, enforcingAuthorizer(&fakeIntrospector{payload: validPayload()}))

	w := doRequest(r, http.MethodGet, "/v1/probe?token="+wellFormedToken(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "ws-1") {
		t.Fatalf("expected workspace in probe response, got %s", w.Body.String())
	}
}

func TestRequireSession_BypassSkipsValidation(t *testing.T) {
	a := Authorizer{
		Validator: NewValidator(&fakeIntrospector{err: context.DeadlineExceeded}),
		Policy:    config.ValidationPolicy{Enforce: false, Environment: "local"},
		Factory:   testFactory,
	}
	r := newTestRouter(t, a)

	w := doRequest(r, http.MethodGet, "/v1/probe", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected bypass to pass, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireCSRF_GETIsNeverBlocked(t *testing.T) {
	r := newTestRouter(t, enforcingAuthorizer(&fakeIntrospector{payload: validPayload()}))

	w := doRequest(r, http.MethodGet, "/v1/probe?token="+wellFormedToken(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected GET to pass without csrf header, got %d", w.Code)
	}
}

func TestRequireCSRF_MatchingHeaderPasses(t *testing.T) {
	r := newTestRouter(t, enforcingAuthorizer(&fakeIntrospector{payload: validPayload()}))

	w := doRequest(r, http.MethodPost, "/v1/probe?token="+wellFormedToken(), map[string]string{
		"x-csrf-token": "csrf-abc",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected matching csrf to pass, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireCSRF_RejectsMismatchAndAbsence(t *testing.T) {
	cases := map[string]map[string]string{
		"missing header": nil,
		"wrong value":    {"x-csrf-token": "not-the-claim"},
		"empty header":   {"x-csrf-token": ""},
	}
	for name, hdr := range cases {
		r := newTestRouter(t, enforcingAuthorizer(&fakeIntrospector{payload: validPayload()}))
		w := doRequest(r, http.MethodPost, "/v1/probe?token="+wellFormedToken(), hdr)
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", name, w.Code)
		}
		if !strings.Contains(w.Body.String(), "CSRF token missing or invalid") {
			t.Fatalf("%s: unexpected body %s", name, w.Body.String())
		}
	}
}

func TestRequireCSRF_RejectsWhenClaimAbsent(t *testing.T) {
	p := validPayload()
	delete(p, "csrf")
	r := newTestRouter(t, enforcingAuthorizer(&fakeIntrospector{payload: p}))

	w := doRequest(r, http.MethodPost, "/v1/probe?token="+wellFormedToken(), map[string]string{
		"x-csrf-token": "csrf-abc",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when claim absent, got %d", w.Code)
	}
}
