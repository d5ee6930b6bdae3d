package api

import (
	"alcyxob/gym-manager/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Sessions binds the session manager to the session cookie.
type Sessions struct {
	manager    *session.Manager
	cookieName string
	secure     bool
}

func NewSessions(manager *session.Manager, cookieName string, secure bool) *Sessions {
	return &Sessions{manager: manager, cookieName: cookieName, secure: secure}
}

// Middleware loads the session named by the cookie. A store outage leaves
// the request with an empty session.
func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(s.cookieName)
		sess, err := s.manager.Load(c.Request.Context(), token)
		if err != nil {
			log.Error().Err(err).Str("request_id", c.GetString(ContextRequestIDKey)).Msg("failed to load session")
			sess = &session.Session{}
		}
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// persist saves the current session and refreshes the cookie. It must run
// before the response is written.
func (s *Sessions) persist(c *gin.Context) bool {
	sess := currentSession(c)
	token, err := s.manager.Save(c.Request.Context(), sess)
	if err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(ContextRequestIDKey)).Msg("failed to save session")
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, token, int(s.manager.TTL().Seconds()), "/", "", s.secure, true)
	return true
}

// login stores p in the session under a new id, so a cookie handed out
// before authentication never becomes an authenticated one.
func (s *Sessions) login(c *gin.Context, p *session.Principal) bool {
	sess := currentSession(c)
	if err := s.manager.Rotate(c.Request.Context(), sess); err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(ContextRequestIDKey)).Msg("failed to rotate session")
		return false
	}
	sess.Data.SetPrincipal(p)
	return s.persist(c)
}

// logout drops the whole session.
func (s *Sessions) logout(c *gin.Context) {
	if err := s.manager.Destroy(c.Request.Context(), currentSession(c)); err != nil {
		log.Error().Err(err).Msg("failed to destroy session")
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}

// setFlash stores a one-shot message shown by the next page.
func (s *Sessions) setFlash(c *gin.Context, kind, message string) {
	currentSession(c).Data.Flash = &session.Flash{Message: message, Type: kind}
	s.persist(c)
}

// popFlash takes the pending flash, if any.
func (s *Sessions) popFlash(c *gin.Context) *session.Flash {
	sess := currentSession(c)
	f := sess.Data.Flash
	if f == nil {
		return nil
	}
	sess.Data.Flash = nil
	if sess.ID != "" {
		s.persist(c)
	}
	return f
}
