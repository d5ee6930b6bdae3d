package service

import (
	"alcyxob/gym-manager/internal/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(dni, plan string) RegisterInput {
	return RegisterInput{
		Name:     "Lucía Ramos",
		Email:    dni + "@example.com",
		Password: "secreto",
		DNI:      dni,
		Phone:    "999888777",
		PlanName: plan,
	}
}

func TestRegister_NormalizesPlanAndReportsPrice(t *testing.T) {
	f := newFixture(t)

	reg, err := f.members().Register(f.ctx, registerInput("12345678", "PLAN BÁSICO"))
	require.NoError(t, err)

	assert.Equal(t, domain.PlanBasic, reg.Plan.Name)
	assert.Equal(t, "Registro exitoso. Plan: Basico - Precio: S/ 80.00", reg.Message())
	assert.Equal(t, f.basic.ID, reg.Member.PlanID)
	assert.True(t, reg.Member.Active)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), reg.Member.RegisteredAt)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), reg.Member.ExpiresAt)
	assert.Empty(t, reg.Member.PasswordHash)
	assert.Equal(t, []string{"12345678@example.com"}, f.notifier.welcomed)

	stored, err := f.repos.Members.GetByDNI(f.ctx, "12345678")
	require.NoError(t, err)
	assert.True(t, passwordMatches(stored.PasswordHash, "secreto"))
}

func TestRegister_PlanLabels(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"PLAN PREMIUM", domain.PlanPremium},
		{"PLAN BASICO", domain.PlanBasic},
		{"premium", domain.PlanPremium},
		{"Basico", domain.PlanBasic},
	}
	for i, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			f := newFixture(t)
			reg, err := f.members().Register(f.ctx, registerInput(string(rune('a'+i))+"0000001", tt.label))
			require.NoError(t, err)
			assert.Equal(t, tt.want, reg.Plan.Name)
		})
	}
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := f.members()
	_, err := svc.Register(f.ctx, registerInput("11111111", "PLAN PREMIUM"))
	require.NoError(t, err)

	dupEmail := registerInput("22222222", "PLAN PREMIUM")
	dupEmail.Email = "11111111@example.com"

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"duplicate email", dupEmail, ErrEmailTaken},
		{"duplicate dni", func() RegisterInput {
			in := registerInput("11111111", "PLAN PREMIUM")
			in.Email = "otro@example.com"
			return in
		}(), ErrDNITaken},
		{"unknown plan", registerInput("33333333", "PLAN ORO"), ErrPlanNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = svc.Register(f.ctx, RegisterInput{Name: "x"})
	assert.Equal(t, KindValidation, KindOf(err))

	n, err := f.repos.Members.Count(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRegister_InactivePlan(t *testing.T) {
	f := newFixture(t)
	_, err := NewPlanService(f.repos.Plans).SetActive(f.ctx, f.premium.ID, false)
	require.NoError(t, err)

	_, err = f.members().Register(f.ctx, registerInput("44444444", "PLAN PREMIUM"))
	assert.ErrorIs(t, err, ErrPlanUnavailable)
}

func TestRegister_WelcomeFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	_, err := f.members().Register(f.ctx, registerInput("55555555", "PLAN PREMIUM"))
	assert.NoError(t, err)
}

func TestRenew(t *testing.T) {
	f := newFixture(t)
	svc := f.members()
	m := f.addMember(t, "Ana", "10000001", f.basic)

	renewed, err := svc.Renew(f.ctx, m.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), renewed.ExpiresAt)

	_, err = svc.Renew(f.ctx, m.ID, 0)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Renew(f.ctx, missingID, 1)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestRenew_ExpiredRestartsFromToday(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "Ana", "10000001", f.basic)
	f.now = f.now.AddDate(0, 3, 0)

	renewed, err := f.members().Renew(f.ctx, m.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), renewed.ExpiresAt)
	assert.True(t, renewed.Active)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	svc := f.members()
	old := f.addMember(t, "Viejo", "20000001", f.basic)
	f.now = f.now.AddDate(0, 0, 20)
	fresh := f.addMember(t, "Nuevo", "20000002", f.basic)
	f.now = f.now.AddDate(0, 0, 20)

	n, err := svc.SweepExpired(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := svc.Get(f.ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	got, err = svc.Get(f.ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)

	n, err = svc.SweepExpired(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpiringSoonAndReminders(t *testing.T) {
	f := newFixture(t)
	svc := f.members()
	soon := f.addMember(t, "Pronto", "30000001", f.basic)
	f.now = f.now.AddDate(0, 0, 10)
	f.addMember(t, "Lejos", "30000002", f.premium)
	f.now = f.now.AddDate(0, 0, 20)

	list, err := svc.ExpiringSoon(f.ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, soon.ID, list[0].ID)

	sent, err := svc.SendExpiryReminders(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"30000001@example.com"}, f.notifier.reminded)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := f.members()
	a := f.addMember(t, "Ana", "40000001", f.basic)
	f.addMember(t, "Beto", "40000002", f.basic)

	_, err := svc.UpdateProfile(f.ctx, a.ID, ProfileInput{Name: "Ana", Email: "40000002@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err := svc.UpdateProfile(f.ctx, a.ID, ProfileInput{Name: " Ana María ", Email: "ana@example.com", Phone: "911"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)
	assert.Equal(t, "40000001", updated.DNI)
}

func TestChangePlanAndList(t *testing.T) {
	f := newFixture(t)
	svc := f.members()
	m := f.addMember(t, "Ana", "50000001", f.basic)

	_, err := svc.ChangePlan(f.ctx, m.ID, missingID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.ChangePlan(f.ctx, m.ID, f.premium.ID)
	require.NoError(t, err)

	list, err := svc.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PlanPremium, list[0].PlanName)
	assert.Equal(t, 150.0, list[0].PlanPrice)
	assert.False(t, list[0].Expired)
}

func TestSetActive(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "Ana", "60000001", f.basic)

	got, err := f.members().SetActive(f.ctx, m.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Active)

	n, err := f.repos.Members.CountActive(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
