package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanInput holds the editable plan fields.
type PlanInput struct {
	Name             string
	Price            float64
	Description      string
	ClassAccess      bool
	PersonalTraining bool
	Active           bool
}

type PlanService interface {
	Create(ctx context.Context, in PlanInput) (*domain.Plan, error)
	Update(ctx context.Context, id primitive.ObjectID, in PlanInput) (*domain.Plan, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
	ListActive(ctx context.Context) ([]domain.Plan, error)
	ListWithClassAccess(ctx context.Context) ([]domain.Plan, error)
	// Deactivate is the delete operation; plans are never removed.
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*domain.Plan, error)
	// SeedDefaults creates the Basico and Premium plans on an empty catalog.
	SeedDefaults(ctx context.Context) (int, error)
}

type planService struct {
	planRepo repository.PlanRepository
}

func NewPlanService(planRepo repository.PlanRepository) PlanService {
	return &planService{planRepo: planRepo}
}

func (in *PlanInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validation("El nombre del plan es obligatorio")
	}
	if in.Price < 0 {
		return validation("El precio debe ser mayor o igual a cero")
	}
	return nil
}

func (s *planService) Create(ctx context.Context, in PlanInput) (*domain.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, in.Name, primitive.NilObjectID); err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		Name:             in.Name,
		Price:            in.Price,
		Description:      in.Description,
		ClassAccess:      in.ClassAccess,
		PersonalTraining: in.PersonalTraining,
		Active:           in.Active,
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, s.writeError("plan.create", err)
	}
	return plan, nil
}

func (s *planService) Update(ctx context.Context, id primitive.ObjectID, in PlanInput) (*domain.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, in.Name, id); err != nil {
		return nil, err
	}

	plan.Name = in.Name
	plan.Price = in.Price
	plan.Description = in.Description
	plan.ClassAccess = in.ClassAccess
	plan.PersonalTraining = in.PersonalTraining
	plan.Active = in.Active
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, s.writeError("plan.update", err)
	}
	return plan, nil
}

// checkName rejects a name used by a plan other than self.
func (s *planService) checkName(ctx context.Context, name string, self primitive.ObjectID) error {
	existing, err := s.planRepo.GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return internalError("plan.byName", err)
	case existing.ID != self:
		return ErrPlanNameTaken
	}
	return nil
}

func (s *planService) writeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrPlanNameTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrPlanNotFound
	}
	return internalError(op, err)
}

func (s *planService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError("plan.get", err)
	}
	return plan, nil
}

func (s *planService) List(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, internalError("plan.list", err)
	}
	return plans, nil
}

func (s *planService) ListActive(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, internalError("plan.listActive", err)
	}
	return plans, nil
}

func (s *planService) ListWithClassAccess(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.planRepo.ListWithClassAccess(ctx)
	if err != nil {
		return nil, internalError("plan.listClassAccess", err)
	}
	return plans, nil
}

func (s *planService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.SetActive(ctx, id, false)
	return err
}

func (s *planService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*domain.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Active = active
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, s.writeError("plan.setActive", err)
	}
	return plan, nil
}

func (s *planService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.planRepo.Count(ctx)
	if err != nil {
		return 0, internalError("plan.count", err)
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, p := range domain.DefaultPlans() {
		plan := p
		if _, err := s.planRepo.Create(ctx, &plan); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return created, internalError("plan.seed", err)
		}
		created++
	}
	return created, nil
}

// resolvePlanName finds the plan a registration form refers to: first by the
// normalized label, then by its capitalized form.
func resolvePlanName(ctx context.Context, repo repository.PlanRepository, raw string) (*domain.Plan, error) {
	normalized := domain.NormalizePlanName(raw)
	if normalized == "" {
		return nil, ErrPlanNotFound
	}
	candidates := []string{normalized}
	if c := domain.Capitalize(normalized); c != normalized {
		candidates = append(candidates, c)
	}

	for _, name := range candidates {
		plan, err := repo.GetByName(ctx, name)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, internalError("plan.resolve", err)
		}
	}
	return nil, ErrPlanNotFound
}
