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

type AttendanceRepository struct {
	mu          sync.RWMutex
	attendances map[primitive.ObjectID]domain.Attendance
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{attendances: make(map[primitive.ObjectID]domain.Attendance)}
}

var _ repository.AttendanceRepository = (*AttendanceRepository)(nil)

func (r *AttendanceRepository) Create(_ context.Context, attendance *domain.Attendance) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attendance.Open = attendance.ExitedAt == nil
	if attendance.Open {
		for _, other := range r.attendances {
			if other.Open && other.MemberID == attendance.MemberID {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	attendance.ID = primitive.NewObjectID()
	r.attendances[attendance.ID] = *attendance
	return attendance.ID, nil
}

func (r *AttendanceRepository) FindOpenByMember(_ context.Context, memberID primitive.ObjectID) (*domain.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.attendances {
		if a.Open && a.MemberID == memberID {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AttendanceRepository) Close(_ context.Context, attendance *domain.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.attendances[attendance.ID]
	if !ok || !existing.Open {
		return repository.ErrNotFound
	}
	existing.ExitedAt = attendance.ExitedAt
	existing.DurationMinutes = attendance.DurationMinutes
	existing.Open = false
	r.attendances[attendance.ID] = existing
	return nil
}

func (r *AttendanceRepository) filter(match func(domain.Attendance) bool) []domain.Attendance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Attendance{}
	for _, a := range r.attendances {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnteredAt.After(out[j].EnteredAt) })
	return out
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *AttendanceRepository) ListBetween(_ context.Context, from, to time.Time) ([]domain.Attendance, error) {
	return r.filter(func(a domain.Attendance) bool { return within(a.EnteredAt, from, to) }), nil
}

func (r *AttendanceRepository) ListByMember(_ context.Context, memberID primitive.ObjectID) ([]domain.Attendance, error) {
	return r.filter(func(a domain.Attendance) bool { return a.MemberID == memberID }), nil
}

func (r *AttendanceRepository) ListByMemberBetween(_ context.Context, memberID primitive.ObjectID, from, to time.Time) ([]domain.Attendance, error) {
	return r.filter(func(a domain.Attendance) bool {
		return a.MemberID == memberID && within(a.EnteredAt, from, to)
	}), nil
}

func (r *AttendanceRepository) CountByMemberBetween(ctx context.Context, memberID primitive.ObjectID, from, to time.Time) (int64, error) {
	list, _ := r.ListByMemberBetween(ctx, memberID, from, to)
	return int64(len(list)), nil
}

func (r *AttendanceRepository) ListOpen(_ context.Context) ([]domain.Attendance, error) {
	return r.filter(func(a domain.Attendance) bool { return a.Open }), nil
}

func (r *AttendanceRepository) CountOpen(_ context.Context) (int64, error) {
	return int64(len(r.filter(func(a domain.Attendance) bool { return a.Open }))), nil
}

type AssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[primitive.ObjectID]domain.RoutineAssignment
}

func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{assignments: make(map[primitive.ObjectID]domain.RoutineAssignment)}
}

var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)

func (r *AssignmentRepository) Create(_ context.Context, assignment *domain.RoutineAssignment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if assignment.Active {
		for _, other := range r.assignments {
			if other.Active && other.MemberID == assignment.MemberID {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	assignment.ID = primitive.NewObjectID()
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	r.assignments[assignment.ID] = *assignment
	return assignment.ID, nil
}

func (r *AssignmentRepository) FindActiveByMember(_ context.Context, memberID primitive.ObjectID) (*domain.RoutineAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.assignments {
		if a.Active && a.MemberID == memberID {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AssignmentRepository) Deactivate(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Active = false
	r.assignments[id] = a
	return nil
}

func (r *AssignmentRepository) ListActive(_ context.Context) ([]domain.RoutineAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.RoutineAssignment{}
	for _, a := range r.assignments {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AssignmentRepository) CountActive(ctx context.Context) (int64, error) {
	list, _ := r.ListActive(ctx)
	return int64(len(list)), nil
}

// storedSession remembers insertion order to break ties between sessions
// created within the same clock tick.
type storedSession struct {
	domain.CompletedSession
	seq int64
}

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[primitive.ObjectID]storedSession
	seq      int64
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[primitive.ObjectID]storedSession)}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(_ context.Context, session *domain.CompletedSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now().UTC()
	r.seq++
	r.sessions[session.ID] = storedSession{CompletedSession: *session, seq: r.seq}
	return session.ID, nil
}

func (r *SessionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.CompletedSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s.CompletedSession, nil
}

func (r *SessionRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) ListByMember(_ context.Context, memberID primitive.ObjectID, limit int) ([]domain.CompletedSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []storedSession{}
	for _, s := range r.sessions {
		if s.MemberID == memberID {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case !a.CompletedOn.Equal(b.CompletedOn):
			return a.CompletedOn.After(b.CompletedOn)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.seq > b.seq
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]domain.CompletedSession, len(matched))
	for i, s := range matched {
		out[i] = s.CompletedSession
	}
	return out, nil
}

func (r *SessionRepository) CountByMemberBetween(_ context.Context, memberID primitive.ObjectID, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, s := range r.sessions {
		if s.MemberID == memberID && within(s.CompletedOn, from, to) {
			n++
		}
	}
	return n, nil
}

func (r *SessionRepository) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, s := range r.sessions {
		if within(s.CompletedOn, from, to) {
			n++
		}
	}
	return n, nil
}
