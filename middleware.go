package guardkit

import (
	"net/http"
)

// Middleware provides HTTP middleware for permission and role checking.
// It is router-agnostic: plain func(http.Handler) http.Handler wrappers
// usable with chi, gorilla/mux or the standard library mux.
type Middleware struct {
	service      *Service
	getPrincipal func(*http.Request) Principal
	getTeamID    func(*http.Request) string
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := guardkit.NewMiddleware(service,
//	    guardkit.WithPrincipalExtractor(func(r *http.Request) guardkit.Principal {
//	        return principalFromSession(r)
//	    }),
//	)
func NewMiddleware(service *Service, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		service:      service,
		getPrincipal: func(*http.Request) Principal { return nil },
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithPrincipalExtractor sets the function that pulls the authenticated
// principal out of the request. Returning nil means unauthenticated.
func WithPrincipalExtractor(fn func(*http.Request) Principal) MiddlewareOption {
	return func(m *Middleware) {
		m.getPrincipal = fn
	}
}

// WithTeamExtractor sets a function that pulls the tenant id out of the
// request (header, path, subdomain). When set, the extracted team id is
// placed in the request context before any check runs.
func WithTeamExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getTeamID = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware failures.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsGuardMismatch(err):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsNotFound(err), IsInvalidArgument(err):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// RequirePermission creates middleware that rejects requests whose
// principal does not hold the named permission. On success a Checker is
// stashed in the request context for handlers to reuse.
//
// Example:
//
//	router.Handle("/posts/edit", mw.RequirePermission("posts.edit")(editHandler))
func (m *Middleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, r, ok := m.authenticate(w, r)
			if !ok {
				return
			}
			ctx := r.Context()

			allowed, err := m.service.HasPermissionTo(ctx, principal, PermissionByName(permission))
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			if checker, err := m.service.CheckerFor(ctx, principal); err == nil {
				r = r.WithContext(WithChecker(ctx, checker))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission creates middleware that passes when the principal
// holds at least one of the named permissions.
func (m *Middleware) RequireAnyPermission(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, r, ok := m.authenticate(w, r)
			if !ok {
				return
			}
			ctx := r.Context()

			checker, err := m.service.CheckerFor(ctx, principal)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !checker.HasAnyPermission(permissions...) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithChecker(ctx, checker)))
		})
	}
}

// RequireRole creates middleware that rejects requests whose principal does
// not hold the named role under an accepted guard.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, r, ok := m.authenticate(w, r)
			if !ok {
				return
			}
			ctx := r.Context()

			checker, err := m.service.CheckerFor(ctx, principal)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !checker.HasRole(role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithChecker(ctx, checker)))
		})
	}
}

// authenticate extracts the principal and stamps the team id into the
// request context. Returns ok=false after writing the response when the
// request is unauthenticated.
func (m *Middleware) authenticate(w http.ResponseWriter, r *http.Request) (Principal, *http.Request, bool) {
	principal := m.getPrincipal(r)
	if principal == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, r, false
	}

	if m.getTeamID != nil {
		if tid := m.getTeamID(r); tid != "" {
			r = r.WithContext(WithTeamID(r.Context(), tid))
		}
	}

	return principal, r, true
}

// TeamFromHeader returns a team extractor reading the tenant id from a
// header.
//
// Example:
//
//	guardkit.WithTeamExtractor(guardkit.TeamFromHeader("X-Team-ID"))
func TeamFromHeader(headerName string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// TeamFromQuery returns a team extractor reading the tenant id from a
// query parameter.
func TeamFromQuery(queryParam string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.URL.Query().Get(queryParam)
	}
}
