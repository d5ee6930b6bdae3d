package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/session"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/rs/zerolog/log"
)

// Constants for context keys
const (
	ContextSessionKey   = "session"
	ContextPrincipalKey = "principal"
	ContextRequestIDKey = "requestID"
	ContextJSONKey      = "jsonEndpoint"
)

const (
	requestIDHeader = "X-Request-ID"
	sessionExpired  = "Sesión expirada. Por favor inicia sesión."
)

// RequestID tags every request with an id, reusing the caller's when sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		event.
			Str("request_id", c.GetString(ContextRequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Instrument records request counts and latency per route template.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// CSRF protects state-changing requests. Requests carrying the XHR header
// or a JSON body skip the token check, since browsers only send those
// cross-origin after a CORS preflight.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) gin.HandlerFunc {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Warn().Str("path", r.URL.Path).Err(csrf.FailureReason(r)).Msg("csrf check failed")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"status":"error","message":"Token CSRF inválido"}`))
		})),
	)

	return func(c *gin.Context) {
		if preflighted(c) {
			c.Next()
			return
		}
		if !secure {
			c.Request = csrf.PlaintextHTTPRequest(c.Request)
		}
		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}

// JSONEndpoint marks the routes of a group as AJAX endpoints.
func JSONEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextJSONKey, true)
		c.Next()
	}
}

// preflighted reports whether the request carries a header that a foreign
// page cannot set without a CORS preflight.
func preflighted(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest" ||
		strings.HasPrefix(c.GetHeader("Content-Type"), "application/json")
}

// isAJAX reports whether the caller expects a JSON answer instead of a redirect.
func isAJAX(c *gin.Context) bool {
	return c.GetBool(ContextJSONKey) ||
		c.GetHeader("X-Requested-With") == "XMLHttpRequest" ||
		strings.HasPrefix(c.GetHeader("Content-Type"), "application/json") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// RequireRole lets the request through only when a principal with role is
// logged in. Pages are redirected to loginPath; AJAX calls get a 401.
func RequireRole(role domain.Role, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		p := sess.Data.Principal(role)
		if p == nil {
			if isAJAX(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": sessionExpired})
				return
			}
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Set(ContextPrincipalKey, p)
		c.Next()
	}
}

// currentSession returns the session attached by Sessions.Middleware.
func currentSession(c *gin.Context) *session.Session {
	if raw, ok := c.Get(ContextSessionKey); ok {
		if s, ok := raw.(*session.Session); ok {
			return s
		}
	}
	s := &session.Session{}
	c.Set(ContextSessionKey, s)
	return s
}

// principal returns the principal attached by RequireRole.
func principal(c *gin.Context) *session.Principal {
	raw, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := raw.(*session.Principal)
	return p
}
