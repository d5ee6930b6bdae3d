package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/notify"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterInput is the public registration form.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	DNI       string
	Phone     string
	BirthDate *time.Time
	// PlanName is the label picked in the form, e.g. "PLAN BÁSICO".
	PlanName string
}

// Registration is the outcome of a successful sign-up.
type Registration struct {
	Member *domain.Member
	Plan   *domain.Plan
}

// Message is the confirmation shown after registering.
func (r *Registration) Message() string {
	return fmt.Sprintf("Registro exitoso. Plan: %s - Precio: %s", r.Plan.Name, notify.FormatPrice(r.Plan.Price))
}

// ProfileInput holds the fields a member may change on their own.
type ProfileInput struct {
	Name  string
	Email string
	Phone string
}

// MemberSummary is a member with its plan resolved for listings.
type MemberSummary struct {
	domain.Member
	PlanName  string  `json:"plan"`
	PlanPrice float64 `json:"precioPlan"`
	Expired   bool    `json:"vencido"`
}

type MemberService interface {
	Register(ctx context.Context, in RegisterInput) (*Registration, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	Summary(ctx context.Context, id primitive.ObjectID) (*MemberSummary, error)
	List(ctx context.Context) ([]MemberSummary, error)
	Renew(ctx context.Context, id primitive.ObjectID, months int) (*domain.Member, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*domain.Member, error)
	ChangePlan(ctx context.Context, id, planID primitive.ObjectID) (*domain.Member, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*domain.Member, error)
	// ExpiringSoon lists active members whose membership ends within days.
	ExpiringSoon(ctx context.Context, days int) ([]domain.Member, error)
	// SweepExpired deactivates every active member whose membership ran out.
	SweepExpired(ctx context.Context) (int64, error)
	// SendExpiryReminders emails members expiring within days and returns how many were sent.
	SendExpiryReminders(ctx context.Context, days int) (int, error)
}

type memberService struct {
	memberRepo repository.MemberRepository
	planRepo   repository.PlanRepository
	notifier   notify.Notifier
	clock      Clock
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	planRepo repository.PlanRepository,
	notifier notify.Notifier,
	clock Clock,
) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		planRepo:   planRepo,
		notifier:   notifier,
		clock:      clock,
	}
}

// Register signs up a new member for one month on the chosen plan.
// Duplicate email or DNI is rejected before the insert; the unique indexes
// catch concurrent submissions.
func (s *memberService) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.DNI = strings.TrimSpace(in.DNI)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.DNI == "" || in.PlanName == "" {
		return nil, validation("Nombre, email, contraseña, DNI y plan son obligatorios")
	}

	if err := s.ensureUnused(ctx, in.Email, in.DNI); err != nil {
		return nil, err
	}

	plan, err := resolvePlanName(ctx, s.planRepo, in.PlanName)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanUnavailable
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, internalError("member.hash", err)
	}

	today := s.clock.Today()
	member := &domain.Member{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		DNI:          in.DNI,
		Phone:        strings.TrimSpace(in.Phone),
		BirthDate:    in.BirthDate,
		RegisteredAt: today,
		ExpiresAt:    domain.AddMonths(today, 1),
		PlanID:       plan.ID,
		Active:       true,
	}
	if _, err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrMemberExists
		}
		return nil, internalError("member.create", err)
	}
	metrics.Registrations.Inc()

	if err := s.notifier.Welcome(ctx, member, plan); err != nil {
		log.Warn().Err(err).Str("member", member.ID.Hex()).Msg("welcome email failed")
	}

	member.PasswordHash = ""
	return &Registration{Member: member, Plan: plan}, nil
}

func (s *memberService) ensureUnused(ctx context.Context, email, dni string) error {
	if _, err := s.memberRepo.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return internalError("member.byEmail", err)
	}
	if _, err := s.memberRepo.GetByDNI(ctx, dni); err == nil {
		return ErrDNITaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return internalError("member.byDNI", err)
	}
	return nil
}

func (s *memberService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, internalError("member.get", err)
	}
	return member, nil
}

func (s *memberService) Summary(ctx context.Context, id primitive.ObjectID) (*MemberSummary, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, []domain.Member{*member})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func (s *memberService) List(ctx context.Context) ([]MemberSummary, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, internalError("member.list", err)
	}
	return s.summarize(ctx, members)
}

func (s *memberService) summarize(ctx context.Context, members []domain.Member) ([]MemberSummary, error) {
	plans, err := planIndex(ctx, s.planRepo)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	out := make([]MemberSummary, 0, len(members))
	for i := range members {
		m := members[i]
		sum := MemberSummary{Member: m, Expired: m.IsExpired(today)}
		if p, ok := plans[m.PlanID]; ok {
			sum.PlanName = p.Name
			sum.PlanPrice = p.Price
		}
		out = append(out, sum)
	}
	return out, nil
}

// planIndex loads the whole plan catalog keyed by ID.
func planIndex(ctx context.Context, repo repository.PlanRepository) (map[primitive.ObjectID]domain.Plan, error) {
	plans, err := repo.List(ctx)
	if err != nil {
		return nil, internalError("plan.index", err)
	}
	idx := make(map[primitive.ObjectID]domain.Plan, len(plans))
	for _, p := range plans {
		idx[p.ID] = p
	}
	return idx, nil
}

func (s *memberService) update(ctx context.Context, op string, member *domain.Member) error {
	if err := s.memberRepo.Update(ctx, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrMemberNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return ErrEmailTaken
		}
		return internalError(op, err)
	}
	return nil
}

func (s *memberService) Renew(ctx context.Context, id primitive.ObjectID, months int) (*domain.Member, error) {
	if months < 1 {
		return nil, validation("La cantidad de meses debe ser mayor a cero")
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	member.Renew(s.clock.Today(), months)
	if err := s.update(ctx, "member.renew", member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*domain.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	member.Active = active
	if err := s.update(ctx, "member.setActive", member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) ChangePlan(ctx context.Context, id, planID primitive.ObjectID) (*domain.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError("member.changePlan", err)
	}
	if !plan.Active {
		return nil, ErrPlanUnavailable
	}
	member.PlanID = plan.ID
	if err := s.update(ctx, "member.changePlan", member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*domain.Member, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" {
		return nil, validation("Nombre y email son obligatorios")
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != member.Email {
		other, err := s.memberRepo.GetByEmail(ctx, in.Email)
		if err == nil && other.ID != member.ID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, internalError("member.byEmail", err)
		}
	}

	member.Name = in.Name
	member.Email = in.Email
	member.Phone = strings.TrimSpace(in.Phone)
	if err := s.update(ctx, "member.profile", member); err != nil {
		return nil, err
	}
	member.PasswordHash = ""
	return member, nil
}

func (s *memberService) ExpiringSoon(ctx context.Context, days int) ([]domain.Member, error) {
	today := s.clock.Today()
	members, err := s.memberRepo.ListExpiringBetween(ctx, today, domain.AddDays(today, days))
	if err != nil {
		return nil, internalError("member.expiring", err)
	}
	return members, nil
}

func (s *memberService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.memberRepo.DeactivateExpired(ctx, s.clock.Today())
	if err != nil {
		return 0, internalError("member.sweep", err)
	}
	if n > 0 {
		metrics.ExpiredDeactivations.Add(float64(n))
		log.Info().Int64("deactivated", n).Msg("expired memberships deactivated")
	}
	return n, nil
}

func (s *memberService) SendExpiryReminders(ctx context.Context, days int) (int, error) {
	members, err := s.ExpiringSoon(ctx, days)
	if err != nil {
		return 0, err
	}
	plans, err := planIndex(ctx, s.planRepo)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range members {
		m := &members[i]
		var plan *domain.Plan
		if p, ok := plans[m.PlanID]; ok {
			plan = &p
		}
		if err := s.notifier.ExpiryReminder(ctx, m, plan); err != nil {
			log.Warn().Err(err).Str("member", m.ID.Hex()).Msg("expiry reminder failed")
			continue
		}
		sent++
	}
	metrics.RemindersSent.Add(float64(sent))
	return sent, nil
}
