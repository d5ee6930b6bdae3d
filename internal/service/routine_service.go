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

// recentSessionsLimit is how many sessions the routine and progress pages list.
const recentSessionsLimit = 10

type RoutineInput struct {
	Name            string
	Description     string
	Objective       string
	Level           string
	DurationMinutes int
	WeeklyFrequency int
}

type ExerciseInput struct {
	Name         string
	Sets         int
	Reps         int
	RestSeconds  int
	Order        int
	Instructions string
}

// RoutineProgress summarizes a member's sessions against the monthly goal.
type RoutineProgress struct {
	SessionsThisMonth int64      `json:"sesionesEsteMes"`
	SessionsLastMonth int64      `json:"sesionesMesAnterior"`
	TotalSessions     int64      `json:"totalSesiones"`
	MonthlyGoal       int        `json:"metaMensual"`
	Percent           int        `json:"porcentajeProgreso"`
	Remaining         int        `json:"sesionesFaltantes"`
	MonthOverMonth    int        `json:"diferenciaMesAnterior"`
	LastSession       *time.Time `json:"ultimaSesion"`
	NextSession       time.Time  `json:"proximaSesion"`
}

// RoutineOverview is the member routine page. Assignment is nil when the
// member has no active routine.
type RoutineOverview struct {
	Assignment     *domain.RoutineAssignment `json:"asignacion"`
	Routine        *domain.PredefinedRoutine `json:"rutina"`
	Exercises      []domain.RoutineExercise  `json:"ejercicios"`
	Progress       *RoutineProgress          `json:"progreso"`
	RecentSessions []domain.CompletedSession `json:"historial"`
}

type RoutineService interface {
	Objectives() []string
	Levels() []string
	// Assign gives the member the active catalog routine for objective and level.
	Assign(ctx context.Context, memberID primitive.ObjectID, objective, level string) (*domain.RoutineAssignment, error)
	CancelCurrent(ctx context.Context, memberID primitive.ObjectID) error
	Overview(ctx context.Context, memberID primitive.ObjectID) (*RoutineOverview, error)
	// LogSession records a completed workout on today's date.
	LogSession(ctx context.Context, memberID primitive.ObjectID, notes string) (*domain.CompletedSession, error)

	CreateRoutine(ctx context.Context, in RoutineInput) (*domain.PredefinedRoutine, error)
	AddExercise(ctx context.Context, routineID primitive.ObjectID, in ExerciseInput) (*domain.RoutineExercise, error)
	ListRoutines(ctx context.Context) ([]domain.PredefinedRoutine, error)
}

type routineService struct {
	routineRepo    repository.RoutineRepository
	assignmentRepo repository.AssignmentRepository
	sessionRepo    repository.SessionRepository
	memberRepo     repository.MemberRepository
	clock          Clock
}

func NewRoutineService(repos repository.Repositories, clock Clock) RoutineService {
	return &routineService{
		routineRepo:    repos.Routines,
		assignmentRepo: repos.Assignments,
		sessionRepo:    repos.Sessions,
		memberRepo:     repos.Members,
		clock:          clock,
	}
}

func (s *routineService) Objectives() []string { return domain.Objectives }

func (s *routineService) Levels() []string { return domain.Levels }

func (s *routineService) Assign(ctx context.Context, memberID primitive.ObjectID, objective, level string) (*domain.RoutineAssignment, error) {
	if !domain.ValidObjective(objective) || !domain.ValidLevel(level) {
		return nil, validation("Objetivo o nivel no válido")
	}
	if _, err := findMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	if _, err := s.assignmentRepo.FindActiveByMember(ctx, memberID); err == nil {
		return nil, ErrRoutineAlreadyAssigned
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("routine.current", err)
	}

	routine, err := s.routineRepo.FindActive(ctx, objective, level)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, internalError("routine.find", err)
	}

	assignment := &domain.RoutineAssignment{
		MemberID:   memberID,
		RoutineID:  routine.ID,
		AssignedAt: s.clock.Now(),
		Objective:  objective,
		Level:      level,
		Active:     true,
	}
	if _, err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoutineAlreadyAssigned
		}
		return nil, internalError("routine.assign", err)
	}
	return assignment, nil
}

func (s *routineService) CancelCurrent(ctx context.Context, memberID primitive.ObjectID) error {
	assignment, err := activeAssignment(ctx, s.assignmentRepo, memberID)
	if err != nil {
		return err
	}
	if err := s.assignmentRepo.Deactivate(ctx, assignment.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoActiveRoutine
		}
		return internalError("routine.cancel", err)
	}
	return nil
}

func (s *routineService) Overview(ctx context.Context, memberID primitive.ObjectID) (*RoutineOverview, error) {
	if _, err := findMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	assignment, err := activeAssignment(ctx, s.assignmentRepo, memberID)
	if errors.Is(err, ErrNoActiveRoutine) {
		return &RoutineOverview{}, nil
	}
	if err != nil {
		return nil, err
	}

	routine, err := s.routineRepo.GetByID(ctx, assignment.RoutineID)
	if err != nil {
		return nil, internalError("routine.get", err)
	}
	exercises, err := s.routineRepo.ListExercises(ctx, routine.ID)
	if err != nil {
		return nil, internalError("routine.exercises", err)
	}
	tracker := progressTracker{sessionRepo: s.sessionRepo, clock: s.clock}
	progress, recent, err := tracker.compute(ctx, memberID, routine)
	if err != nil {
		return nil, err
	}

	return &RoutineOverview{
		Assignment:     assignment,
		Routine:        routine,
		Exercises:      exercises,
		Progress:       progress,
		RecentSessions: recent,
	}, nil
}

func (s *routineService) LogSession(ctx context.Context, memberID primitive.ObjectID, notes string) (*domain.CompletedSession, error) {
	if _, err := findMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	return recordSession(ctx, s.assignmentRepo, s.sessionRepo, s.clock, memberID, notes)
}

func (s *routineService) CreateRoutine(ctx context.Context, in RoutineInput) (*domain.PredefinedRoutine, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validation("El nombre de la rutina es obligatorio")
	}
	if !domain.ValidObjective(in.Objective) || !domain.ValidLevel(in.Level) {
		return nil, validation("Objetivo o nivel no válido")
	}
	if in.WeeklyFrequency < 1 || in.WeeklyFrequency > 7 {
		return nil, validation("La frecuencia semanal debe estar entre 1 y 7")
	}

	routine := &domain.PredefinedRoutine{
		Name:            in.Name,
		Description:     in.Description,
		Objective:       in.Objective,
		Level:           in.Level,
		DurationMinutes: in.DurationMinutes,
		WeeklyFrequency: in.WeeklyFrequency,
		Active:          true,
	}
	if _, err := s.routineRepo.Create(ctx, routine); err != nil {
		return nil, internalError("routine.create", err)
	}
	return routine, nil
}

func (s *routineService) AddExercise(ctx context.Context, routineID primitive.ObjectID, in ExerciseInput) (*domain.RoutineExercise, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validation("El nombre del ejercicio es obligatorio")
	}
	if in.Sets < 0 || in.Reps < 0 || in.RestSeconds < 0 {
		return nil, validation("Series, repeticiones y descanso no pueden ser negativos")
	}
	if _, err := s.routineRepo.GetByID(ctx, routineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, "Rutina no encontrada")
		}
		return nil, internalError("routine.get", err)
	}

	exercise := &domain.RoutineExercise{
		RoutineID:    routineID,
		Name:         in.Name,
		Sets:         in.Sets,
		Reps:         in.Reps,
		RestSeconds:  in.RestSeconds,
		Order:        in.Order,
		Instructions: in.Instructions,
	}
	if _, err := s.routineRepo.AddExercise(ctx, exercise); err != nil {
		return nil, internalError("routine.addExercise", err)
	}
	return exercise, nil
}

func (s *routineService) ListRoutines(ctx context.Context) ([]domain.PredefinedRoutine, error) {
	list, err := s.routineRepo.List(ctx)
	if err != nil {
		return nil, internalError("routine.list", err)
	}
	return list, nil
}

func findMember(ctx context.Context, repo repository.MemberRepository, id primitive.ObjectID) (*domain.Member, error) {
	m, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, internalError("member.get", err)
	}
	return m, nil
}

func activeAssignment(ctx context.Context, repo repository.AssignmentRepository, memberID primitive.ObjectID) (*domain.RoutineAssignment, error) {
	a, err := repo.FindActiveByMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveRoutine
		}
		return nil, internalError("assignment.active", err)
	}
	return a, nil
}

// recordSession inserts a completed session for the member's active
// assignment. Several sessions on the same day are allowed.
func recordSession(
	ctx context.Context,
	assignments repository.AssignmentRepository,
	sessions repository.SessionRepository,
	clock Clock,
	memberID primitive.ObjectID,
	notes string,
) (*domain.CompletedSession, error) {
	assignment, err := activeAssignment(ctx, assignments, memberID)
	if err != nil {
		return nil, err
	}
	session := &domain.CompletedSession{
		AssignmentID: assignment.ID,
		MemberID:     memberID,
		CompletedOn:  clock.Today(),
		Notes:        strings.TrimSpace(notes),
	}
	if _, err := sessions.Create(ctx, session); err != nil {
		return nil, internalError("session.create", err)
	}
	return session, nil
}

// progressTracker computes monthly progress from completed sessions.
// Session dates are civil dates, so month ranges use domain.MonthRange.
type progressTracker struct {
	sessionRepo repository.SessionRepository
	clock       Clock
}

func (t progressTracker) compute(ctx context.Context, memberID primitive.ObjectID, routine *domain.PredefinedRoutine) (*RoutineProgress, []domain.CompletedSession, error) {
	today := t.clock.Today()
	thisFrom, thisTo := domain.MonthRange(today)
	lastFrom, lastTo := domain.PreviousMonthRange(today)

	thisMonth, err := t.sessionRepo.CountByMemberBetween(ctx, memberID, thisFrom, thisTo)
	if err != nil {
		return nil, nil, internalError("progress.thisMonth", err)
	}
	lastMonth, err := t.sessionRepo.CountByMemberBetween(ctx, memberID, lastFrom, lastTo)
	if err != nil {
		return nil, nil, internalError("progress.lastMonth", err)
	}
	all, err := t.sessionRepo.ListByMember(ctx, memberID, 0)
	if err != nil {
		return nil, nil, internalError("progress.sessions", err)
	}

	var last *time.Time
	if len(all) > 0 {
		d := all[0].CompletedOn
		last = &d
	}

	freq := routine.WeeklyFrequency
	p := &RoutineProgress{
		SessionsThisMonth: thisMonth,
		SessionsLastMonth: lastMonth,
		TotalSessions:     int64(len(all)),
		MonthlyGoal:       routine.MonthlyGoal(),
		Percent:           domain.ProgressPercent(int(thisMonth), freq),
		Remaining:         domain.RemainingSessions(int(thisMonth), freq),
		MonthOverMonth:    domain.MonthOverMonth(int(thisMonth), int(lastMonth)),
		LastSession:       last,
		NextSession:       domain.NextSession(last, freq, today),
	}

	recent := all
	if len(recent) > recentSessionsLimit {
		recent = recent[:recentSessionsLimit]
	}
	return p, recent, nil
}
