package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateAdmin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.repos.Administrators, f.repos.Members)

	created, err := svc.CreateAdmin(f.ctx, AdminInput{Username: "root", Password: "pw", Name: "Root", Email: "root@example.com"})
	require.NoError(t, err)
	assert.Empty(t, created.PasswordHash)

	admin, err := svc.AuthenticateAdmin(f.ctx, "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Root", admin.Name)

	tests := []struct {
		name, user, pass string
	}{
		{"wrong password", "root", "nope"},
		{"unknown user", "ghost", "pw"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AuthenticateAdmin(f.ctx, tt.user, tt.pass)
			assert.ErrorIs(t, err, ErrInvalidAdminCredentials)
			assert.Equal(t, KindUnauthenticated, KindOf(err))
		})
	}

	_, err = svc.CreateAdmin(f.ctx, AdminInput{Username: "root", Password: "x", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrAdminExists)
}

func TestAuthenticateMember(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.repos.Administrators, f.repos.Members)
	members := f.members()

	reg, err := members.Register(f.ctx, registerInput("70000001", "PLAN BÁSICO"))
	require.NoError(t, err)

	m, err := auth.AuthenticateMember(f.ctx, "70000001", "secreto")
	require.NoError(t, err)
	assert.Equal(t, reg.Member.ID, m.ID)
	assert.Empty(t, m.PasswordHash)

	_, err = auth.AuthenticateMember(f.ctx, "70000001", "otra")
	assert.ErrorIs(t, err, ErrInvalidMemberCredentials)

	_, err = members.SetActive(f.ctx, reg.Member.ID, false)
	require.NoError(t, err)

	_, err = auth.AuthenticateMember(f.ctx, "70000001", "secreto")
	assert.ErrorIs(t, err, ErrMemberInactive)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.repos.Administrators, f.repos.Members)

	created, err := svc.EnsureAdmin(f.ctx, AdminInput{Username: "admin"})
	require.NoError(t, err)
	assert.False(t, created, "no password configured")

	in := AdminInput{Username: "admin", Password: "admin123", Name: "Admin", Email: "admin@example.com"}
	created, err = svc.EnsureAdmin(f.ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(f.ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
}
