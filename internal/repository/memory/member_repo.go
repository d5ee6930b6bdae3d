// Package memory provides in-process repository implementations. They keep
// the same uniqueness and conditional-write guarantees as the MongoDB ones
// and back both the test suite and the "memory" database driver.
package memory

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemberRepository struct {
	mu      sync.RWMutex
	members map[primitive.ObjectID]domain.Member
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{members: make(map[primitive.ObjectID]domain.Member)}
}

var _ repository.MemberRepository = (*MemberRepository)(nil)

func (r *MemberRepository) conflicts(m *domain.Member) bool {
	for id, other := range r.members {
		if id == m.ID {
			continue
		}
		if other.Email == m.Email || other.DNI == m.DNI {
			return true
		}
	}
	return false
}

func (r *MemberRepository) Create(_ context.Context, member *domain.Member) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member.ID = primitive.NewObjectID()
	if r.conflicts(member) {
		member.ID = primitive.NilObjectID
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	r.members[member.ID] = *member
	return member.ID, nil
}

func (r *MemberRepository) find(match func(domain.Member) bool) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if match(m) {
			found := m
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemberRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Member, error) {
	return r.find(func(m domain.Member) bool { return m.ID == id })
}

func (r *MemberRepository) GetByEmail(_ context.Context, email string) (*domain.Member, error) {
	return r.find(func(m domain.Member) bool { return m.Email == email })
}

func (r *MemberRepository) GetByDNI(_ context.Context, dni string) (*domain.Member, error) {
	return r.find(func(m domain.Member) bool { return m.DNI == dni })
}

func (r *MemberRepository) Update(_ context.Context, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.members[member.ID]
	if !ok {
		return repository.ErrNotFound
	}
	member.DNI = existing.DNI
	if r.conflicts(member) {
		return repository.ErrDuplicate
	}
	member.RegisteredAt = existing.RegisteredAt
	member.CreatedAt = existing.CreatedAt
	member.UpdatedAt = time.Now().UTC()
	r.members[member.ID] = *member
	return nil
}

func (r *MemberRepository) filter(match func(domain.Member) bool) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Member{}
	for _, m := range r.members {
		if match(m) {
			out = append(out, m)
		}
	}
	return out
}

func (r *MemberRepository) count(match func(domain.Member) bool) int64 {
	return int64(len(r.filter(match)))
}

func byName(members []domain.Member) []domain.Member {
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members
}

func (r *MemberRepository) List(_ context.Context) ([]domain.Member, error) {
	return byName(r.filter(func(domain.Member) bool { return true })), nil
}

func (r *MemberRepository) ListActive(_ context.Context) ([]domain.Member, error) {
	return byName(r.filter(func(m domain.Member) bool { return m.Active })), nil
}

func (r *MemberRepository) Count(_ context.Context) (int64, error) {
	return r.count(func(domain.Member) bool { return true }), nil
}

func (r *MemberRepository) CountActive(_ context.Context) (int64, error) {
	return r.count(func(m domain.Member) bool { return m.Active }), nil
}

func (r *MemberRepository) CountActiveByPlan(_ context.Context, planID primitive.ObjectID) (int64, error) {
	return r.count(func(m domain.Member) bool { return m.Active && m.PlanID == planID }), nil
}

func (r *MemberRepository) CountUnexpired(_ context.Context, today time.Time) (int64, error) {
	return r.count(func(m domain.Member) bool { return m.Active && !m.ExpiresAt.Before(today) }), nil
}

func (r *MemberRepository) CountRegisteredBetween(_ context.Context, from, to time.Time) (int64, error) {
	return r.count(func(m domain.Member) bool {
		return !m.RegisteredAt.Before(from) && m.RegisteredAt.Before(to)
	}), nil
}

func (r *MemberRepository) ListExpiringBetween(_ context.Context, from, to time.Time) ([]domain.Member, error) {
	out := r.filter(func(m domain.Member) bool {
		return m.Active && !m.ExpiresAt.Before(from) && !m.ExpiresAt.After(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (r *MemberRepository) ListExpired(_ context.Context, today time.Time) ([]domain.Member, error) {
	out := r.filter(func(m domain.Member) bool { return m.ExpiresAt.Before(today) })
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.After(out[j].ExpiresAt) })
	return out, nil
}

func (r *MemberRepository) DeactivateExpired(_ context.Context, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.members {
		if m.Active && m.ExpiresAt.Before(today) {
			m.Active = false
			m.UpdatedAt = time.Now().UTC()
			r.members[id] = m
			n++
		}
	}
	return n, nil
}

type AdministratorRepository struct {
	mu     sync.RWMutex
	admins map[primitive.ObjectID]domain.Administrator
}

func NewAdministratorRepository() *AdministratorRepository {
	return &AdministratorRepository{admins: make(map[primitive.ObjectID]domain.Administrator)}
}

var _ repository.AdministratorRepository = (*AdministratorRepository)(nil)

func (r *AdministratorRepository) Create(_ context.Context, admin *domain.Administrator) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.admins {
		if other.Username == admin.Username || other.Email == admin.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	admin.ID = primitive.NewObjectID()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	r.admins[admin.ID] = *admin
	return admin.ID, nil
}

func (r *AdministratorRepository) find(match func(domain.Administrator) bool) (*domain.Administrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.admins {
		if match(a) {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AdministratorRepository) GetByUsername(_ context.Context, username string) (*domain.Administrator, error) {
	return r.find(func(a domain.Administrator) bool { return a.Username == username })
}

func (r *AdministratorRepository) GetByEmail(_ context.Context, email string) (*domain.Administrator, error) {
	return r.find(func(a domain.Administrator) bool { return a.Email == email })
}

func (r *AdministratorRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.admins)), nil
}
