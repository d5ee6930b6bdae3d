package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role distinguishes the two kinds of principals that can hold a session.
type Role string

const (
	RoleAdmin  Role = "administrador"
	RoleMember Role = "miembro"
)

// Member is a gym customer holding one membership plan.
// ExpiresAt and RegisteredAt are civil dates (see CivilDate).
type Member struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"nombre"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	DNI          string             `bson:"dni" json:"dni"`
	Phone        string             `bson:"phone" json:"telefono"`
	BirthDate    *time.Time         `bson:"birthDate,omitempty" json:"fechaNacimiento,omitempty"`
	RegisteredAt time.Time          `bson:"registeredAt" json:"fechaRegistro"`
	ExpiresAt    time.Time          `bson:"expiresAt" json:"fechaVencimiento"`
	PlanID       primitive.ObjectID `bson:"planId" json:"planId"`
	Active       bool               `bson:"active" json:"activo"`
	CreatedAt    time.Time          `bson:"createdAt" json:"-"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"-"`
}

// IsExpired reports whether the membership ran out before today.
// A member without an expiration date counts as expired.
func (m *Member) IsExpired(today time.Time) bool {
	if m.ExpiresAt.IsZero() {
		return true
	}
	return CivilDate(today).After(m.ExpiresAt)
}

// Renew extends the membership by months. An expired membership restarts
// from today, a running one is extended from its current expiration.
func (m *Member) Renew(today time.Time, months int) {
	base := m.ExpiresAt
	if m.IsExpired(today) {
		base = CivilDate(today)
	}
	m.ExpiresAt = AddMonths(base, months)
	m.Active = true
}

// ExpiresWithin reports whether the membership ends between today and
// today+days, both inclusive.
func (m *Member) ExpiresWithin(today time.Time, days int) bool {
	if m.ExpiresAt.IsZero() {
		return false
	}
	t := CivilDate(today)
	return !m.ExpiresAt.Before(t) && !m.ExpiresAt.After(AddDays(t, days))
}

// Administrator manages the gym through the /admin area.
type Administrator struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"usuario"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"nombre"`
	Email        string             `bson:"email" json:"email"`
	Active       bool               `bson:"active" json:"activo"`
	CreatedAt    time.Time          `bson:"createdAt" json:"fechaCreacion"`
}
