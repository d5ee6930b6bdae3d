package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	hashCost = bcrypt.MinCost
	seatReleaseBackoff = time.Millisecond
}

type fakeNotifier struct {
	welcomed []string
	reminded []string
	err      error
}

func (n *fakeNotifier) Welcome(_ context.Context, m *domain.Member, _ *domain.Plan) error {
	n.welcomed = append(n.welcomed, m.Email)
	return n.err
}

func (n *fakeNotifier) ExpiryReminder(_ context.Context, m *domain.Member, _ *domain.Plan) error {
	if n.err != nil {
		return n.err
	}
	n.reminded = append(n.reminded, m.Email)
	return nil
}

type fixture struct {
	ctx      context.Context
	repos    repository.Repositories
	now      time.Time
	clock    Clock
	notifier *fakeNotifier
	basic    *domain.Plan
	premium  *domain.Plan
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		repos:    memory.NewRepositories(),
		now:      time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		notifier: &fakeNotifier{},
	}
	f.clock = NewClock(time.UTC, func() time.Time { return f.now })

	plans := domain.DefaultPlans()
	for i := range plans {
		_, err := f.repos.Plans.Create(f.ctx, &plans[i])
		require.NoError(t, err)
	}
	f.basic, f.premium = &plans[0], &plans[1]
	return f
}

func (f *fixture) members() MemberService {
	return NewMemberService(f.repos.Members, f.repos.Plans, f.notifier, f.clock)
}

func (f *fixture) classes() ClassService {
	return NewClassService(f.repos, nil)
}

// addMember stores an active member on plan whose membership runs one more month.
func (f *fixture) addMember(t *testing.T, name, dni string, plan *domain.Plan) *domain.Member {
	t.Helper()
	today := f.clock.Today()
	m := &domain.Member{
		Name:         name,
		Email:        dni + "@example.com",
		DNI:          dni,
		RegisteredAt: today,
		ExpiresAt:    domain.AddMonths(today, 1),
		PlanID:       plan.ID,
		Active:       true,
	}
	_, err := f.repos.Members.Create(f.ctx, m)
	require.NoError(t, err)
	return m
}

func (f *fixture) addClass(t *testing.T, name string, capacity *int) *domain.GroupClass {
	t.Helper()
	c, err := f.classes().Create(f.ctx, ClassInput{
		Name:      name,
		Weekday:   "Lunes",
		StartTime: "18:00",
		Duration:  60,
		Capacity:  capacity,
		Active:    true,
	})
	require.NoError(t, err)
	return c
}

func intPtr(n int) *int { return &n }

var missingID = primitive.NewObjectID()
