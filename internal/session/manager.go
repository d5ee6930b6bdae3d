package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const issuer = "gym-manager"

// Session is the loaded state of one browser session. ID is empty until
// the session is first saved.
type Session struct {
	ID   string
	Data Data
}

// cookieClaims is the payload of the signed session cookie.
type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager signs session cookies and loads their data from a Store.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Load resolves a cookie value into a session. A missing, forged or
// expired cookie yields a fresh empty session, never an error; only store
// failures are reported.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return &Session{}, nil
	}
	id, err := m.parse(token)
	if err != nil {
		return &Session{}, nil
	}
	data, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Data: *data}, nil
}

// Save persists the session, assigning an id on first save, and returns
// the signed cookie value.
func (m *Manager) Save(ctx context.Context, s *Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := m.store.Save(ctx, s.ID, &s.Data, m.ttl); err != nil {
		return "", err
	}
	return m.sign(s.ID)
}

// Destroy removes the session from the store and clears it in place.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	if s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
	}
	*s = Session{}
	return nil
}

// Rotate drops the stored copy and clears the id so the next Save issues a
// new one. The data is kept.
func (m *Manager) Rotate(ctx context.Context, s *Session) error {
	if s.ID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return err
	}
	s.ID = ""
	return nil
}

func (m *Manager) sign(id string) (string, error) {
	now := m.now()
	claims := cookieClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(token string) (string, error) {
	claims := &cookieClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.SessionID == "" || claims.Issuer != issuer {
		return "", errors.New("invalid session cookie")
	}
	return claims.SessionID, nil
}
