package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InstructorInput struct {
	Name      string
	DNI       string
	Email     string
	Phone     string
	Specialty string
	HiredAt   time.Time
}

type InstructorService interface {
	Create(ctx context.Context, in InstructorInput) (*domain.Instructor, error)
	Update(ctx context.Context, id primitive.ObjectID, in InstructorInput) (*domain.Instructor, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error)
	List(ctx context.Context) ([]domain.Instructor, error)
	ListActive(ctx context.Context) ([]domain.Instructor, error)
	ListBySpecialty(ctx context.Context, specialty string) ([]domain.Instructor, error)
	// Deactivate is the delete operation; instructors are never removed.
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	ToggleActive(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error)
}

type instructorService struct {
	instructorRepo repository.InstructorRepository
	clock          Clock
}

func NewInstructorService(instructorRepo repository.InstructorRepository, clock Clock) InstructorService {
	return &instructorService{instructorRepo: instructorRepo, clock: clock}
}

func (in *InstructorInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.DNI = strings.TrimSpace(in.DNI)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.DNI == "" || in.Email == "" {
		return validation("Nombre, DNI y email del instructor son obligatorios")
	}
	return nil
}

func (s *instructorService) Create(ctx context.Context, in InstructorInput) (*domain.Instructor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in, primitive.NilObjectID); err != nil {
		return nil, err
	}

	hired := in.HiredAt
	if hired.IsZero() {
		hired = s.clock.Today()
	}
	instructor := &domain.Instructor{
		Name:      in.Name,
		DNI:       in.DNI,
		Email:     in.Email,
		Phone:     in.Phone,
		Specialty: in.Specialty,
		HiredAt:   domain.CivilDate(hired),
		Active:    true,
	}
	if _, err := s.instructorRepo.Create(ctx, instructor); err != nil {
		return nil, s.writeError("instructor.create", err)
	}
	return instructor, nil
}

func (s *instructorService) Update(ctx context.Context, id primitive.ObjectID, in InstructorInput) (*domain.Instructor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	instructor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in, id); err != nil {
		return nil, err
	}

	instructor.Name = in.Name
	instructor.DNI = in.DNI
	instructor.Email = in.Email
	instructor.Phone = in.Phone
	instructor.Specialty = in.Specialty
	if !in.HiredAt.IsZero() {
		instructor.HiredAt = domain.CivilDate(in.HiredAt)
	}
	if err := s.instructorRepo.Update(ctx, instructor); err != nil {
		return nil, s.writeError("instructor.update", err)
	}
	return instructor, nil
}

func (s *instructorService) checkUnique(ctx context.Context, in InstructorInput, self primitive.ObjectID) error {
	lookups := []func(context.Context, string) (*domain.Instructor, error){
		s.instructorRepo.GetByDNI,
		s.instructorRepo.GetByEmail,
	}
	keys := []string{in.DNI, in.Email}
	for i, lookup := range lookups {
		other, err := lookup(ctx, keys[i])
		switch {
		case errors.Is(err, repository.ErrNotFound):
			continue
		case err != nil:
			return internalError("instructor.unique", err)
		case other.ID != self:
			return ErrInstructorExists
		}
	}
	return nil
}

func (s *instructorService) writeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrInstructorExists
	case errors.Is(err, repository.ErrNotFound):
		return ErrInstructorNotFound
	}
	return internalError(op, err)
}

func (s *instructorService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error) {
	instructor, err := s.instructorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, internalError("instructor.get", err)
	}
	return instructor, nil
}

func (s *instructorService) List(ctx context.Context) ([]domain.Instructor, error) {
	list, err := s.instructorRepo.List(ctx)
	if err != nil {
		return nil, internalError("instructor.list", err)
	}
	return list, nil
}

func (s *instructorService) ListActive(ctx context.Context) ([]domain.Instructor, error) {
	list, err := s.instructorRepo.ListActive(ctx)
	if err != nil {
		return nil, internalError("instructor.listActive", err)
	}
	return list, nil
}

func (s *instructorService) ListBySpecialty(ctx context.Context, specialty string) ([]domain.Instructor, error) {
	list, err := s.instructorRepo.ListBySpecialty(ctx, specialty)
	if err != nil {
		return nil, internalError("instructor.bySpecialty", err)
	}
	return list, nil
}

func (s *instructorService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	instructor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	instructor.Active = false
	if err := s.instructorRepo.Update(ctx, instructor); err != nil {
		return s.writeError("instructor.deactivate", err)
	}
	return nil
}

func (s *instructorService) ToggleActive(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error) {
	instructor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	instructor.Active = !instructor.Active
	if err := s.instructorRepo.Update(ctx, instructor); err != nil {
		return nil, s.writeError("instructor.toggle", err)
	}
	return instructor, nil
}
