package api

import (
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusFor maps a service error kind to an HTTP status code.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// render answers a page request with its view-model. Templates live outside
// this service, so the view name travels with the data.
func (s *Sessions) render(c *gin.Context, view string, data gin.H) {
	body := gin.H{"view": view}
	for k, v := range data {
		body[k] = v
	}
	if f := s.popFlash(c); f != nil {
		body["mensaje"] = f.Message
		body["tipoMensaje"] = f.Type
	}
	if token := csrf.Token(c.Request); token != "" {
		body["csrfToken"] = token
	}
	c.JSON(http.StatusOK, body)
}

// redirect answers a form post with 303 and a flash for the next page.
func (s *Sessions) redirect(c *gin.Context, location, kind, message string) {
	if message != "" {
		s.setFlash(c, kind, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// redirectResult flashes the outcome of err: the success message when nil,
// the error's message otherwise.
func (s *Sessions) redirectResult(c *gin.Context, location string, err error, success string) {
	if err != nil {
		s.redirect(c, location, session.FlashError, service.Message(err))
		return
	}
	s.redirect(c, location, session.FlashSuccess, success)
}

// jsonResult answers an AJAX call with {status, message}.
func jsonResult(c *gin.Context, err error, success string) {
	if err != nil {
		c.JSON(statusFor(service.KindOf(err)), gin.H{"status": "error", "message": service.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": success})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "message": message})
}

// objectID reads the named path parameter (or form field) as an ObjectID.
func objectID(raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	return id, err == nil
}

// principalID returns the logged-in principal's ObjectID.
func principalID(c *gin.Context) (primitive.ObjectID, bool) {
	p := principal(c)
	if p == nil {
		return primitive.NilObjectID, false
	}
	return objectID(p.ID)
}
