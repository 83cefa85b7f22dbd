package guardkit

import (
	"context"
)

// Context keys for GuardKit values.
type contextKey string

const (
	contextKeyTeamID    contextKey = "guardkit:team_id"
	contextKeyActorID   contextKey = "guardkit:actor_id"
	contextKeyIPAddress contextKey = "guardkit:ip_address"
	contextKeyUserAgent contextKey = "guardkit:user_agent"
	contextKeyRequestID contextKey = "guardkit:request_id"
	contextKeyChecker   contextKey = "guardkit:checker"
)

// WithTeamID sets the current team id for this request or session. All
// scoped lookups and creation defaults read it from here, so concurrent
// requests for different tenants never observe each other's team.
func WithTeamID(ctx context.Context, teamID string) context.Context {
	return context.WithValue(ctx, contextKeyTeamID, teamID)
}

// WithoutTeamID clears the current team id, returning to the global scope.
func WithoutTeamID(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyTeamID, "")
}

// TeamIDFromContext retrieves the current team id.
// Returns empty string if not set.
func TeamIDFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeyTeamID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithActorID records who is performing mutations, for the audit log.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// ActorIDFromContext retrieves the actor id from context.
func ActorIDFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeyActorID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// IPAddressFromContext retrieves the IP address from context.
func IPAddressFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// UserAgentFromContext retrieves the user agent from context.
func UserAgentFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request id to the context (for audit correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestIDFromContext retrieves the request id from context.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithChecker stashes a Checker in the context. Set by the middleware so
// handlers can re-check permissions without another database round trip.
func WithChecker(ctx context.Context, checker *Checker) context.Context {
	return context.WithValue(ctx, contextKeyChecker, checker)
}

// CheckerFromContext retrieves the Checker from context.
// Returns nil if not set.
func CheckerFromContext(ctx context.Context) *Checker {
	if v := ctx.Value(contextKeyChecker); v != nil {
		if c, ok := v.(*Checker); ok {
			return c
		}
	}
	return nil
}

// AuditContext holds all audit-related request metadata from context.
type AuditContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

// GetAuditContext extracts all audit information from context.
func GetAuditContext(ctx context.Context) AuditContext {
	return AuditContext{
		ActorID:   ActorIDFromContext(ctx),
		IPAddress: IPAddressFromContext(ctx),
		UserAgent: UserAgentFromContext(ctx),
		RequestID: RequestIDFromContext(ctx),
	}
}

// WithAuditContext adds all audit information to context at once.
func WithAuditContext(ctx context.Context, ac AuditContext) context.Context {
	if ac.ActorID != "" {
		ctx = WithActorID(ctx, ac.ActorID)
	}
	if ac.IPAddress != "" {
		ctx = WithIPAddress(ctx, ac.IPAddress)
	}
	if ac.UserAgent != "" {
		ctx = WithUserAgent(ctx, ac.UserAgent)
	}
	if ac.RequestID != "" {
		ctx = WithRequestID(ctx, ac.RequestID)
	}
	return ctx
}
