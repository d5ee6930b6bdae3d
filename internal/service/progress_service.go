package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberProgress is one row of the admin progress overview.
type MemberProgress struct {
	MemberID          primitive.ObjectID `json:"miembroId"`
	MemberName        string             `json:"miembroNombre"`
	MemberDNI         string             `json:"miembroDni"`
	RoutineName       string             `json:"rutinaNombre"`
	Objective         string             `json:"objetivo"`
	Level             string             `json:"nivel"`
	WeeklyFrequency   int                `json:"frecuenciaSemanal"`
	SessionsThisMonth int64              `json:"sesionesCompletadas"`
	MonthlyGoal       int                `json:"metaMensual"`
	Percent           int                `json:"porcentajeProgreso"`
	AssignedAt        time.Time          `json:"fechaAsignacion"`
}

// ProgressDetail is the admin view of a single member's progress.
type ProgressDetail struct {
	Member     *domain.Member            `json:"miembro"`
	Assignment *domain.RoutineAssignment `json:"asignacion"`
	Routine    *domain.PredefinedRoutine `json:"rutina"`
	Progress   *RoutineProgress          `json:"progreso"`
	History    []domain.CompletedSession `json:"historial"`
}

type ProgressStats struct {
	MembersWithRoutine int64 `json:"miembrosConRutina"`
	SessionsToday      int64 `json:"sesionesHoy"`
	SessionsThisMonth  int64 `json:"sesionesMes"`
}

type ProgressService interface {
	// MembersWithRoutine lists active members with a routine, best progress first.
	MembersWithRoutine(ctx context.Context) ([]MemberProgress, error)
	Detail(ctx context.Context, memberID primitive.ObjectID) (*ProgressDetail, error)
	// MarkSession records a session on behalf of a member, without de-duplication.
	MarkSession(ctx context.Context, memberID primitive.ObjectID, notes string) (*domain.CompletedSession, error)
	DeleteSession(ctx context.Context, sessionID primitive.ObjectID) error
	Stats(ctx context.Context) (*ProgressStats, error)
}

type progressService struct {
	memberRepo     repository.MemberRepository
	assignmentRepo repository.AssignmentRepository
	routineRepo    repository.RoutineRepository
	sessionRepo    repository.SessionRepository
	tracker        progressTracker
	clock          Clock
}

func NewProgressService(repos repository.Repositories, clock Clock) ProgressService {
	return &progressService{
		memberRepo:     repos.Members,
		assignmentRepo: repos.Assignments,
		routineRepo:    repos.Routines,
		sessionRepo:    repos.Sessions,
		tracker:        progressTracker{sessionRepo: repos.Sessions, clock: clock},
		clock:          clock,
	}
}

func (s *progressService) MembersWithRoutine(ctx context.Context) ([]MemberProgress, error) {
	assignments, err := s.assignmentRepo.ListActive(ctx)
	if err != nil {
		return nil, internalError("progress.assignments", err)
	}
	from, to := domain.MonthRange(s.clock.Today())

	out := make([]MemberProgress, 0, len(assignments))
	routines := make(map[primitive.ObjectID]*domain.PredefinedRoutine)
	for _, a := range assignments {
		member, err := s.memberRepo.GetByID(ctx, a.MemberID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, internalError("progress.member", err)
		}
		if !member.Active {
			continue
		}

		routine, ok := routines[a.RoutineID]
		if !ok {
			routine, err = s.routineRepo.GetByID(ctx, a.RoutineID)
			if err != nil {
				return nil, internalError("progress.routine", err)
			}
			routines[a.RoutineID] = routine
		}

		sessions, err := s.sessionRepo.CountByMemberBetween(ctx, a.MemberID, from, to)
		if err != nil {
			return nil, internalError("progress.count", err)
		}
		out = append(out, MemberProgress{
			MemberID:          member.ID,
			MemberName:        member.Name,
			MemberDNI:         member.DNI,
			RoutineName:       routine.Name,
			Objective:         a.Objective,
			Level:             a.Level,
			WeeklyFrequency:   routine.WeeklyFrequency,
			SessionsThisMonth: sessions,
			MonthlyGoal:       routine.MonthlyGoal(),
			Percent:           domain.ProgressPercent(int(sessions), routine.WeeklyFrequency),
			AssignedAt:        a.AssignedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].MemberName < out[j].MemberName
	})
	return out, nil
}

func (s *progressService) Detail(ctx context.Context, memberID primitive.ObjectID) (*ProgressDetail, error) {
	member, err := findMember(ctx, s.memberRepo, memberID)
	if err != nil {
		return nil, err
	}
	assignment, err := activeAssignment(ctx, s.assignmentRepo, memberID)
	if err != nil {
		return nil, err
	}
	routine, err := s.routineRepo.GetByID(ctx, assignment.RoutineID)
	if err != nil {
		return nil, internalError("progress.routine", err)
	}
	progress, history, err := s.tracker.compute(ctx, memberID, routine)
	if err != nil {
		return nil, err
	}

	member.PasswordHash = ""
	return &ProgressDetail{
		Member:     member,
		Assignment: assignment,
		Routine:    routine,
		Progress:   progress,
		History:    history,
	}, nil
}

func (s *progressService) MarkSession(ctx context.Context, memberID primitive.ObjectID, notes string) (*domain.CompletedSession, error) {
	if _, err := findMember(ctx, s.memberRepo, memberID); err != nil {
		return nil, err
	}
	return recordSession(ctx, s.assignmentRepo, s.sessionRepo, s.clock, memberID, notes)
}

func (s *progressService) DeleteSession(ctx context.Context, sessionID primitive.ObjectID) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return internalError("progress.deleteSession", err)
	}
	return nil
}

func (s *progressService) Stats(ctx context.Context) (*ProgressStats, error) {
	withRoutine, err := s.MembersWithRoutine(ctx)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	sessionsToday, err := s.sessionRepo.CountBetween(ctx, today, domain.AddDays(today, 1))
	if err != nil {
		return nil, internalError("progress.today", err)
	}
	from, to := domain.MonthRange(today)
	sessionsMonth, err := s.sessionRepo.CountBetween(ctx, from, to)
	if err != nil {
		return nil, internalError("progress.month", err)
	}
	return &ProgressStats{
		MembersWithRoutine: int64(len(withRoutine)),
		SessionsToday:      sessionsToday,
		SessionsThisMonth:  sessionsMonth,
	}, nil
}
