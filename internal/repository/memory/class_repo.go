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

type ClassRepository struct {
	mu      sync.RWMutex
	classes map[primitive.ObjectID]domain.GroupClass
}

func NewClassRepository() *ClassRepository {
	return &ClassRepository{classes: make(map[primitive.ObjectID]domain.GroupClass)}
}

var _ repository.ClassRepository = (*ClassRepository)(nil)

func (r *ClassRepository) nameTaken(c *domain.GroupClass) bool {
	for id, other := range r.classes {
		if id != c.ID && other.Name == c.Name {
			return true
		}
	}
	return false
}

func (r *ClassRepository) Create(_ context.Context, class *domain.GroupClass) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	class.ID = primitive.NewObjectID()
	if r.nameTaken(class) {
		class.ID = primitive.NilObjectID
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	class.SeatsTaken = 0
	r.classes[class.ID] = cloneClass(*class)
	return class.ID, nil
}

func cloneClass(c domain.GroupClass) domain.GroupClass {
	if c.Capacity != nil {
		capacity := *c.Capacity
		c.Capacity = &capacity
	}
	if c.InstructorID != nil {
		id := *c.InstructorID
		c.InstructorID = &id
	}
	return c
}

func (r *ClassRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.GroupClass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = cloneClass(c)
	return &c, nil
}

func (r *ClassRepository) GetByName(_ context.Context, name string) (*domain.GroupClass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.classes {
		if c.Name == name {
			c = cloneClass(c)
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ClassRepository) Update(_ context.Context, class *domain.GroupClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.classes[class.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(class) {
		return repository.ErrDuplicate
	}
	class.SeatsTaken = existing.SeatsTaken
	class.CreatedAt = existing.CreatedAt
	class.UpdatedAt = time.Now().UTC()
	r.classes[class.ID] = cloneClass(*class)
	return nil
}

func (r *ClassRepository) filter(match func(domain.GroupClass) bool) []domain.GroupClass {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.GroupClass{}
	for _, c := range r.classes {
		if match(c) {
			out = append(out, cloneClass(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *ClassRepository) List(_ context.Context) ([]domain.GroupClass, error) {
	return r.filter(func(domain.GroupClass) bool { return true }), nil
}

func (r *ClassRepository) ListActive(_ context.Context) ([]domain.GroupClass, error) {
	return r.filter(func(c domain.GroupClass) bool { return c.Active }), nil
}

func (r *ClassRepository) ListByInstructor(_ context.Context, instructorID primitive.ObjectID) ([]domain.GroupClass, error) {
	return r.filter(func(c domain.GroupClass) bool {
		return c.InstructorID != nil && *c.InstructorID == instructorID
	}), nil
}

func (r *ClassRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.classes)), nil
}

func (r *ClassRepository) ReserveSeat(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Capacity != nil && c.SeatsTaken >= *c.Capacity {
		return repository.ErrCapacityReached
	}
	c.SeatsTaken++
	r.classes[id] = c
	return nil
}

func (r *ClassRepository) ReleaseSeat(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok || c.SeatsTaken == 0 {
		return nil
	}
	c.SeatsTaken--
	r.classes[id] = c
	return nil
}

type ReservationRepository struct {
	mu           sync.RWMutex
	reservations map[primitive.ObjectID]domain.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{reservations: make(map[primitive.ObjectID]domain.Reservation)}
}

var _ repository.ReservationRepository = (*ReservationRepository)(nil)

func (r *ReservationRepository) Create(_ context.Context, reservation *domain.Reservation) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reservation.Status == "" {
		reservation.Status = domain.ReservationActive
	}
	if reservation.IsActive() {
		for _, other := range r.reservations {
			if other.IsActive() && other.MemberID == reservation.MemberID && other.ClassID == reservation.ClassID {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	reservation.ID = primitive.NewObjectID()
	if reservation.ReservedAt.IsZero() {
		reservation.ReservedAt = time.Now().UTC()
	}
	r.reservations[reservation.ID] = *reservation
	return reservation.ID, nil
}

func (r *ReservationRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &res, nil
}

func (r *ReservationRepository) FindActive(_ context.Context, memberID, classID primitive.ObjectID) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.reservations {
		if res.IsActive() && res.MemberID == memberID && res.ClassID == classID {
			found := res
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ReservationRepository) ListActiveByMember(_ context.Context, memberID primitive.ObjectID) ([]domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Reservation{}
	for _, res := range r.reservations {
		if res.IsActive() && res.MemberID == memberID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservedAt.After(out[j].ReservedAt) })
	return out, nil
}

func (r *ReservationRepository) CountActiveByClass(_ context.Context, classID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, res := range r.reservations {
		if res.IsActive() && res.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (r *ReservationRepository) ActiveCountsByClass(_ context.Context) (map[primitive.ObjectID]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[primitive.ObjectID]int64)
	for _, res := range r.reservations {
		if res.IsActive() {
			counts[res.ClassID]++
		}
	}
	return counts, nil
}

func (r *ReservationRepository) CountActive(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, res := range r.reservations {
		if res.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *ReservationRepository) Cancel(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok || !res.IsActive() {
		return repository.ErrUpdateFailed
	}
	res.Status = domain.ReservationCancelled
	r.reservations[id] = res
	return nil
}
