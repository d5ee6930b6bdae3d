package repository

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound        = RepositoryError("not found")
	ErrUpdateFailed    = RepositoryError("update failed")
	ErrDuplicate       = RepositoryError("duplicate key")
	ErrCapacityReached = RepositoryError("capacity reached")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// MemberRepository stores gym members. Email and DNI are unique.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetByDNI(ctx context.Context, dni string) (*domain.Member, error)
	Update(ctx context.Context, member *domain.Member) error
	List(ctx context.Context) ([]domain.Member, error)
	ListActive(ctx context.Context) ([]domain.Member, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountActiveByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error)
	// CountUnexpired counts active members whose expiration is on or after today.
	CountUnexpired(ctx context.Context, today time.Time) (int64, error)
	CountRegisteredBetween(ctx context.Context, from, to time.Time) (int64, error)
	// ListExpiringBetween returns active members whose expiration date lies in [from, to].
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Member, error)
	// ListExpired returns members whose expiration date is before today.
	ListExpired(ctx context.Context, today time.Time) ([]domain.Member, error)
	// DeactivateExpired flips active members expired before today to inactive.
	DeactivateExpired(ctx context.Context, today time.Time) (int64, error)
}

// AdministratorRepository stores administrators. Username and email are unique.
type AdministratorRepository interface {
	Create(ctx context.Context, admin *domain.Administrator) (primitive.ObjectID, error)
	GetByUsername(ctx context.Context, username string) (*domain.Administrator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Administrator, error)
	Count(ctx context.Context) (int64, error)
}

// InstructorRepository stores instructors. DNI and email are unique.
type InstructorRepository interface {
	Create(ctx context.Context, instructor *domain.Instructor) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error)
	GetByDNI(ctx context.Context, dni string) (*domain.Instructor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Instructor, error)
	Update(ctx context.Context, instructor *domain.Instructor) error
	List(ctx context.Context) ([]domain.Instructor, error)
	ListActive(ctx context.Context) ([]domain.Instructor, error)
	ListBySpecialty(ctx context.Context, specialty string) ([]domain.Instructor, error)
	Count(ctx context.Context) (int64, error)
}

// PlanRepository stores membership plans. Names are unique.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetByName(ctx context.Context, name string) (*domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	List(ctx context.Context) ([]domain.Plan, error)
	ListActive(ctx context.Context) ([]domain.Plan, error)
	ListWithClassAccess(ctx context.Context) ([]domain.Plan, error)
	Count(ctx context.Context) (int64, error)
}

// ClassRepository stores group classes. Names are unique.
type ClassRepository interface {
	Create(ctx context.Context, class *domain.GroupClass) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error)
	GetByName(ctx context.Context, name string) (*domain.GroupClass, error)
	// Update writes the editable fields; the seat counter is left untouched.
	Update(ctx context.Context, class *domain.GroupClass) error
	List(ctx context.Context) ([]domain.GroupClass, error)
	ListActive(ctx context.Context) ([]domain.GroupClass, error)
	ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]domain.GroupClass, error)
	Count(ctx context.Context) (int64, error)
	// ReserveSeat atomically takes one seat, failing with ErrCapacityReached
	// when the class is full.
	ReserveSeat(ctx context.Context, id primitive.ObjectID) error
	ReleaseSeat(ctx context.Context, id primitive.ObjectID) error
}

// ReservationRepository stores reservations. At most one ACTIVA reservation
// per (member, class) exists; a second one fails with ErrDuplicate.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Reservation, error)
	FindActive(ctx context.Context, memberID, classID primitive.ObjectID) (*domain.Reservation, error)
	ListActiveByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Reservation, error)
	CountActiveByClass(ctx context.Context, classID primitive.ObjectID) (int64, error)
	// ActiveCountsByClass returns the number of ACTIVA reservations per class.
	ActiveCountsByClass(ctx context.Context) (map[primitive.ObjectID]int64, error)
	CountActive(ctx context.Context) (int64, error)
	// Cancel moves an ACTIVA reservation to CANCELADA, failing with
	// ErrUpdateFailed if it was not active anymore.
	Cancel(ctx context.Context, id primitive.ObjectID) error
}

// AttendanceRepository stores gym visits. A member has at most one open
// visit; a second one fails with ErrDuplicate.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *domain.Attendance) (primitive.ObjectID, error)
	FindOpenByMember(ctx context.Context, memberID primitive.ObjectID) (*domain.Attendance, error)
	// Close persists the exit of an open visit, failing with ErrNotFound
	// when the visit was already closed.
	Close(ctx context.Context, attendance *domain.Attendance) error
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Attendance, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Attendance, error)
	ListByMemberBetween(ctx context.Context, memberID primitive.ObjectID, from, to time.Time) ([]domain.Attendance, error)
	// ListOpen returns the visits without an exit, whatever day they started.
	ListOpen(ctx context.Context) ([]domain.Attendance, error)
	CountByMemberBetween(ctx context.Context, memberID primitive.ObjectID, from, to time.Time) (int64, error)
	CountOpen(ctx context.Context) (int64, error)
}

// RoutineRepository stores the predefined routine catalog and its exercises.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.PredefinedRoutine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PredefinedRoutine, error)
	FindActive(ctx context.Context, objective, level string) (*domain.PredefinedRoutine, error)
	List(ctx context.Context) ([]domain.PredefinedRoutine, error)
	ListActive(ctx context.Context) ([]domain.PredefinedRoutine, error)
	AddExercise(ctx context.Context, exercise *domain.RoutineExercise) (primitive.ObjectID, error)
	// ListExercises returns the routine's exercises sorted by Order.
	ListExercises(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error)
}

// AssignmentRepository stores routine assignments. A member has at most one
// active assignment; a second one fails with ErrDuplicate.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.RoutineAssignment) (primitive.ObjectID, error)
	FindActiveByMember(ctx context.Context, memberID primitive.ObjectID) (*domain.RoutineAssignment, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	ListActive(ctx context.Context) ([]domain.RoutineAssignment, error)
	CountActive(ctx context.Context) (int64, error)
}

// SessionRepository stores completed workout sessions. Dates are civil dates.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.CompletedSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CompletedSession, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ListByMember returns sessions newest first; limit <= 0 means all.
	ListByMember(ctx context.Context, memberID primitive.ObjectID, limit int) ([]domain.CompletedSession, error)
	// CountByMemberBetween counts sessions dated in [from, to).
	CountByMemberBetween(ctx context.Context, memberID primitive.ObjectID, from, to time.Time) (int64, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// Repositories groups every store the services depend on.
type Repositories struct {
	Members        MemberRepository
	Administrators AdministratorRepository
	Instructors    InstructorRepository
	Plans          PlanRepository
	Classes        ClassRepository
	Reservations   ReservationRepository
	Attendances    AttendanceRepository
	Routines       RoutineRepository
	Assignments    AssignmentRepository
	Sessions       SessionRepository
}
