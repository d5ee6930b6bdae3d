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

type InstructorRepository struct {
	mu          sync.RWMutex
	instructors map[primitive.ObjectID]domain.Instructor
}

func NewInstructorRepository() *InstructorRepository {
	return &InstructorRepository{instructors: make(map[primitive.ObjectID]domain.Instructor)}
}

var _ repository.InstructorRepository = (*InstructorRepository)(nil)

func (r *InstructorRepository) conflicts(in *domain.Instructor) bool {
	for id, other := range r.instructors {
		if id != in.ID && (other.DNI == in.DNI || other.Email == in.Email) {
			return true
		}
	}
	return false
}

func (r *InstructorRepository) Create(_ context.Context, instructor *domain.Instructor) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	instructor.ID = primitive.NewObjectID()
	if r.conflicts(instructor) {
		instructor.ID = primitive.NilObjectID
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	instructor.CreatedAt = now
	instructor.UpdatedAt = now
	r.instructors[instructor.ID] = *instructor
	return instructor.ID, nil
}

func (r *InstructorRepository) find(match func(domain.Instructor) bool) (*domain.Instructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, in := range r.instructors {
		if match(in) {
			found := in
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *InstructorRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Instructor, error) {
	return r.find(func(in domain.Instructor) bool { return in.ID == id })
}

func (r *InstructorRepository) GetByDNI(_ context.Context, dni string) (*domain.Instructor, error) {
	return r.find(func(in domain.Instructor) bool { return in.DNI == dni })
}

func (r *InstructorRepository) GetByEmail(_ context.Context, email string) (*domain.Instructor, error) {
	return r.find(func(in domain.Instructor) bool { return in.Email == email })
}

func (r *InstructorRepository) Update(_ context.Context, instructor *domain.Instructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.instructors[instructor.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(instructor) {
		return repository.ErrDuplicate
	}
	instructor.CreatedAt = existing.CreatedAt
	instructor.UpdatedAt = time.Now().UTC()
	r.instructors[instructor.ID] = *instructor
	return nil
}

func (r *InstructorRepository) filter(match func(domain.Instructor) bool) []domain.Instructor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Instructor{}
	for _, in := range r.instructors {
		if match(in) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *InstructorRepository) List(_ context.Context) ([]domain.Instructor, error) {
	return r.filter(func(domain.Instructor) bool { return true }), nil
}

func (r *InstructorRepository) ListActive(_ context.Context) ([]domain.Instructor, error) {
	return r.filter(func(in domain.Instructor) bool { return in.Active }), nil
}

func (r *InstructorRepository) ListBySpecialty(_ context.Context, specialty string) ([]domain.Instructor, error) {
	return r.filter(func(in domain.Instructor) bool { return in.Active && in.Specialty == specialty }), nil
}

func (r *InstructorRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.instructors)), nil
}

type PlanRepository struct {
	mu    sync.RWMutex
	plans map[primitive.ObjectID]domain.Plan
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{plans: make(map[primitive.ObjectID]domain.Plan)}
}

var _ repository.PlanRepository = (*PlanRepository)(nil)

func (r *PlanRepository) conflicts(p *domain.Plan) bool {
	for id, other := range r.plans {
		if id != p.ID && other.Name == p.Name {
			return true
		}
	}
	return false
}

func (r *PlanRepository) Create(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	if r.conflicts(plan) {
		plan.ID = primitive.NilObjectID
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *PlanRepository) find(match func(domain.Plan) bool) (*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plans {
		if match(p) {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PlanRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	return r.find(func(p domain.Plan) bool { return p.ID == id })
}

func (r *PlanRepository) GetByName(_ context.Context, name string) (*domain.Plan, error) {
	return r.find(func(p domain.Plan) bool { return p.Name == name })
}

func (r *PlanRepository) Update(_ context.Context, plan *domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(plan) {
		return repository.ErrDuplicate
	}
	plan.CreatedAt = existing.CreatedAt
	plan.UpdatedAt = time.Now().UTC()
	r.plans[plan.ID] = *plan
	return nil
}

func (r *PlanRepository) filter(match func(domain.Plan) bool) []domain.Plan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Plan{}
	for _, p := range r.plans {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

func (r *PlanRepository) List(_ context.Context) ([]domain.Plan, error) {
	return r.filter(func(domain.Plan) bool { return true }), nil
}

func (r *PlanRepository) ListActive(_ context.Context) ([]domain.Plan, error) {
	return r.filter(func(p domain.Plan) bool { return p.Active }), nil
}

func (r *PlanRepository) ListWithClassAccess(_ context.Context) ([]domain.Plan, error) {
	return r.filter(func(p domain.Plan) bool { return p.Active && p.ClassAccess }), nil
}

func (r *PlanRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.plans)), nil
}

type RoutineRepository struct {
	mu        sync.RWMutex
	routines  map[primitive.ObjectID]domain.PredefinedRoutine
	exercises map[primitive.ObjectID]domain.RoutineExercise
}

func NewRoutineRepository() *RoutineRepository {
	return &RoutineRepository{
		routines:  make(map[primitive.ObjectID]domain.PredefinedRoutine),
		exercises: make(map[primitive.ObjectID]domain.RoutineExercise),
	}
}

var _ repository.RoutineRepository = (*RoutineRepository)(nil)

func (r *RoutineRepository) Create(_ context.Context, routine *domain.PredefinedRoutine) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	routine.ID = primitive.NewObjectID()
	routine.CreatedAt = time.Now().UTC()
	r.routines[routine.ID] = *routine
	return routine.ID, nil
}

func (r *RoutineRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PredefinedRoutine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routine, ok := r.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &routine, nil
}

func (r *RoutineRepository) FindActive(ctx context.Context, objective, level string) (*domain.PredefinedRoutine, error) {
	active, _ := r.ListActive(ctx)
	var found *domain.PredefinedRoutine
	for i := range active {
		rt := active[i]
		if rt.Objective != objective || rt.Level != level {
			continue
		}
		if found == nil || rt.CreatedAt.Before(found.CreatedAt) {
			found = &rt
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *RoutineRepository) filter(match func(domain.PredefinedRoutine) bool) []domain.PredefinedRoutine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.PredefinedRoutine{}
	for _, rt := range r.routines {
		if match(rt) {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Objective != out[j].Objective {
			return out[i].Objective < out[j].Objective
		}
		return out[i].Level < out[j].Level
	})
	return out
}

func (r *RoutineRepository) List(_ context.Context) ([]domain.PredefinedRoutine, error) {
	return r.filter(func(domain.PredefinedRoutine) bool { return true }), nil
}

func (r *RoutineRepository) ListActive(_ context.Context) ([]domain.PredefinedRoutine, error) {
	return r.filter(func(rt domain.PredefinedRoutine) bool { return rt.Active }), nil
}

func (r *RoutineRepository) AddExercise(_ context.Context, exercise *domain.RoutineExercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *RoutineRepository) ListExercises(_ context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.RoutineExercise{}
	for _, ex := range r.exercises {
		if ex.RoutineID == routineID {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}
