package auth

import (
	"context"
	"log/slog"
	"time"

	"ceartscore-platform/internal/ratelimit"
)

// MsgRateLimited is the classification string returned when a client has
// exhausted its validation attempt budget.
const MsgRateLimited = "Rate limit exceeded. Please try again later."

// Introspector is the capability that trades a raw token for its verified
// payload. Production wiring talks to the vendor API; tests substitute a
// double.
type Introspector interface {
	Introspect(ctx context.Context, token string) (map[string]any, error)
}

// Result is the uniform outcome of a validation attempt.
//
// Invariants: Valid=true implies Claims is non-nil and satisfies every
// claim check; Valid=false implies Error is a non-empty classification.
// Claims may accompany an invalid result (expired, future-issued, too old)
// for audit logging; Valid alone decides access.
type Result struct {
	Valid       bool
	Error       string
	RateLimited bool
	Claims      *Claims
}

// Validator orchestrates rate limiting, structural checks, introspection,
// and claim validation into a single pass/fail answer.
type Validator struct {
	introspector Introspector
	limiter      ratelimit.Limiter
	maxTokenAge  time.Duration
	log          *slog.Logger
	clock        func() time.Time
}

type ValidatorOption func(*Validator)

func WithLimiter(l ratelimit.Limiter) ValidatorOption {
	return func(v *Validator) { v.limiter = l }
}

func WithMaxTokenAge(d time.Duration) ValidatorOption {
	return func(v *Validator) { v.maxTokenAge = d }
}

func WithLogger(log *slog.Logger) ValidatorOption {
	return func(v *Validator) { v.log = log }
}

func WithClock(clock func() time.Time) ValidatorOption {
	return func(v *Validator) { v.clock = clock }
}

func NewValidator(introspector Introspector, opts ...ValidatorOption) *Validator {
	v := &Validator{
		introspector: introspector,
		maxTokenAge:  DefaultMaxTokenAge,
		log:          slog.Default(),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the full validation chain for one request. clientIP may be
// empty, in which case no rate limiting applies. No error or panic from the
// introspector ever escapes; every failure becomes a classified Result.
func (v *Validator) Validate(ctx context.Context, token, clientIP string) Result {
	// Cheapest rejection first: throttled clients never touch the token.
	if clientIP != "" && v.limiter != nil {
		limited, err := v.limiter.Check(ctx, clientIP)
		if err != nil {
			// Throttling is best-effort; an unavailable limiter must not
			// take authentication down with it.
			v.log.Warn("rate limiter unavailable", "err", err)
		} else if limited {
			return Result{Error: MsgRateLimited, RateLimited: true}
		}
	}

	if err := CheckTokenStructure(token); err != nil {
		return Result{Error: err.Error()}
	}

	payload, err := v.introspector.Introspect(ctx, token)
	if err != nil {
		return Result{Error: "Token validation failed: " + err.Error()}
	}

	claims, err := ValidateClaims(payload, v.clock(), v.maxTokenAge)
	if err != nil {
		return Result{Error: err.Error(), Claims: claims}
	}
	return Result{Valid: true, Claims: claims}
}
