package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"ceartscore-platform/internal/audit"
	"ceartscore-platform/internal/config"

	"github.com/gin-gonic/gin"
)

const (
	// TokenQueryParam carries the session token on every protected request.
	TokenQueryParam = "token"

	headerForwardedFor = "X-Forwarded-For"
)

// Authorizer turns validation outcomes into HTTP responses. It is the only
// layer that maps failures to status codes; no error from the validation
// chain crosses into handlers.
type Authorizer struct {
	Validator *Validator
	Policy    config.ValidationPolicy
	Factory   ClientFactory

	// Audit is optional; logging is best-effort and never blocks a request.
	Audit *audit.Service
	Log   *slog.Logger
}

func (a Authorizer) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

// RequireSession validates the token query parameter and injects the
// session claims and the workspace client into the request context.
//
// In non-enforcing environments (resolved once at startup, never from
// request state) all validation is skipped and an unauthenticated client
// handle is attached instead.
func (a Authorizer) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Policy.Enforce {
			a.attachBypassSession(c)
			c.Next()
			return
		}

		token := c.Query(TokenQueryParam)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Session token is required",
				"message": "Provide a session token in the token query parameter.",
			})
			return
		}

		clientIP := resolveClientIP(c)
		res := a.Validator.Validate(c.Request.Context(), token, clientIP)
		if !res.Valid {
			a.auditFailure(c, res, clientIP)
			status := http.StatusUnauthorized
			message := "The session token is invalid or expired."
			if res.RateLimited {
				status = http.StatusTooManyRequests
				message = "Too many authentication attempts. Please try again later."
			}
			c.AbortWithStatusJSON(status, gin.H{"error": res.Error, "message": message})
			return
		}

		client, err := a.Factory(token)
		if err != nil {
			a.logger().Error("workspace client construction failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Service error",
				"message": "Unable to reach the workspace service.",
			})
			return
		}

		ctx := WithSession(c.Request.Context(), res.Claims, client)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", res.Claims.Subject)
		c.Set("workspace_id", res.Claims.WorkspaceID)

		c.Next()
	}
}

// stateChangingMethods are the only methods the CSRF guard inspects.
var stateChangingMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
	http.MethodPatch:  {},
}

// HeaderCSRFToken is the request header checked against the csrf claim.
const HeaderCSRFToken = "x-csrf-token"

// RequireCSRF compares the x-csrf-token header against the csrf claim of
// the already-validated session. Binding the check to the session's own
// claim means a forged request needs the bearer token too, not just a
// leaked cookie. Reads and non-enforcing environments pass through.
func (a Authorizer) RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Policy.Enforce {
			c.Next()
			return
		}
		if _, ok := stateChangingMethods[c.Request.Method]; !ok {
			c.Next()
			return
		}

		header := c.GetHeader(HeaderCSRFToken)
		claims, err := ClaimsFrom(c.Request.Context())
		if err != nil || claims.CSRF == "" || header == "" || header != claims.CSRF {
			a.auditCSRF(c, claims)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "CSRF token missing or invalid",
				"message": "Reload the page and try again.",
			})
			return
		}
		c.Next()
	}
}

func (a Authorizer) attachBypassSession(c *gin.Context) {
	var client WorkspaceClient
	if a.Factory != nil {
		handle, err := a.Factory("")
		if err != nil {
			// Unauthenticated handle construction is allowed to fail here;
			// local development proceeds without one.
			a.logger().Debug("unauthenticated client unavailable", "err", err)
		} else {
			client = handle
		}
	}
	c.Request = c.Request.WithContext(WithSession(c.Request.Context(), nil, client))
}

func (a Authorizer) auditFailure(c *gin.Context, res Result, clientIP string) {
	if a.Audit == nil {
		return
	}
	var workspaceID, actor string
	if res.Claims != nil {
		workspaceID = res.Claims.WorkspaceID
		actor = res.Claims.Subject
	}
	if err := a.Audit.LogAuthFailure(c.Request.Context(), workspaceID, actor, clientIP, res.Error); err != nil {
		a.logger().Warn("audit append failed", "err", err)
	}
}

func (a Authorizer) auditCSRF(c *gin.Context, claims *Claims) {
	if a.Audit == nil {
		return
	}
	var workspaceID, actor string
	if claims != nil {
		workspaceID = claims.WorkspaceID
		actor = claims.Subject
	}
	if err := a.Audit.LogCSRFRejected(c.Request.Context(), workspaceID, actor, resolveClientIP(c), c.Request.Method, c.Request.URL.Path); err != nil {
		a.logger().Warn("audit append failed", "err", err)
	}
}

// resolveClientIP prefers the first X-Forwarded-For hop, falling back to
// the transport peer address.
func resolveClientIP(c *gin.Context) string {
	if fwd := c.GetHeader(headerForwardedFor); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}
