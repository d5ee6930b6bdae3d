// Package session keeps the logged-in principal and one-shot flash messages
// on the server side. The browser only holds a signed cookie with the
// session id.
package session

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Principal identifies who is logged in. ID is the hex ObjectID.
type Principal struct {
	Role domain.Role `json:"role"`
	ID   string      `json:"id"`
	Name string      `json:"name"`
}

// Flash types used by the views.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Message string `json:"mensaje"`
	Type    string `json:"tipoMensaje"`
}

// Data is everything stored for one session.
type Data struct {
	Admin  *Principal `json:"administrador,omitempty"`
	Member *Principal `json:"miembro,omitempty"`
	Flash  *Flash     `json:"flash,omitempty"`
}

// Principal returns the principal logged in with role, or nil.
func (d *Data) Principal(role domain.Role) *Principal {
	switch role {
	case domain.RoleAdmin:
		return d.Admin
	case domain.RoleMember:
		return d.Member
	}
	return nil
}

// SetPrincipal stores p under its role.
func (d *Data) SetPrincipal(p *Principal) {
	switch p.Role {
	case domain.RoleAdmin:
		d.Admin = p
	case domain.RoleMember:
		d.Member = p
	}
}

// Store persists session data by id.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
