package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AdminInput carries the fields needed to create an administrator.
type AdminInput struct {
	Username string
	Password string
	Name     string
	Email    string
}

type AuthService interface {
	AuthenticateAdmin(ctx context.Context, username, password string) (*domain.Administrator, error)
	AuthenticateMember(ctx context.Context, dni, password string) (*domain.Member, error)
	CreateAdmin(ctx context.Context, in AdminInput) (*domain.Administrator, error)
	// EnsureAdmin creates in when no administrator exists yet.
	EnsureAdmin(ctx context.Context, in AdminInput) (bool, error)
}

type authService struct {
	adminRepo  repository.AdministratorRepository
	memberRepo repository.MemberRepository
}

func NewAuthService(adminRepo repository.AdministratorRepository, memberRepo repository.MemberRepository) AuthService {
	return &authService{adminRepo: adminRepo, memberRepo: memberRepo}
}

// AuthenticateAdmin checks the username exists, the account is active and
// the password matches.
func (s *authService) AuthenticateAdmin(ctx context.Context, username, password string) (*domain.Administrator, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidAdminCredentials
	}

	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidAdminCredentials
		}
		return nil, internalError("auth.admin", err)
	}
	if !passwordMatches(admin.PasswordHash, password) {
		return nil, ErrInvalidAdminCredentials
	}
	if !admin.Active {
		return nil, ErrAdminInactive
	}

	admin.PasswordHash = ""
	return admin, nil
}

// AuthenticateMember logs a member in by DNI. Inactive members are refused
// even with the right password.
func (s *authService) AuthenticateMember(ctx context.Context, dni, password string) (*domain.Member, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" || password == "" {
		return nil, ErrInvalidMemberCredentials
	}

	member, err := s.memberRepo.GetByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidMemberCredentials
		}
		return nil, internalError("auth.member", err)
	}
	if !passwordMatches(member.PasswordHash, password) {
		return nil, ErrInvalidMemberCredentials
	}
	if !member.Active {
		return nil, ErrMemberInactive
	}

	member.PasswordHash = ""
	return member, nil
}

func (s *authService) CreateAdmin(ctx context.Context, in AdminInput) (*domain.Administrator, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return nil, validation("Usuario, contraseña y email son obligatorios")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, internalError("auth.hash", err)
	}

	admin := &domain.Administrator{
		Username:     in.Username,
		PasswordHash: hashed,
		Name:         in.Name,
		Email:        in.Email,
		Active:       true,
	}
	if _, err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAdminExists
		}
		return nil, internalError("auth.createAdmin", err)
	}

	admin.PasswordHash = ""
	return admin, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, in AdminInput) (bool, error) {
	n, err := s.adminRepo.Count(ctx)
	if err != nil {
		return false, internalError("auth.countAdmins", err)
	}
	if n > 0 {
		return false, nil
	}
	if in.Password == "" {
		log.Warn().Msg("no administrator exists and bootstrap.admin_password is empty, skipping")
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, in); err != nil {
		return false, err
	}
	log.Info().Str("username", in.Username).Msg("bootstrap administrator created")
	return true, nil
}
