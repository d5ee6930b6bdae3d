package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceStatus is the current state of one member.
type AttendanceStatus struct {
	InGym     bool                   `json:"enGimnasio"`
	EnteredAt *time.Time             `json:"horaEntrada,omitempty"`
	State     domain.AttendanceState `json:"estado"`
}

// MemberAttendance is a row of the admin attendance list.
type MemberAttendance struct {
	MemberID  primitive.ObjectID     `json:"id"`
	Name      string                 `json:"nombre"`
	DNI       string                 `json:"dni"`
	State     domain.AttendanceState `json:"estado"`
	EnteredAt *time.Time             `json:"horaEntrada,omitempty"`
}

// AttendanceEntry is an attendance with the member's name.
type AttendanceEntry struct {
	domain.Attendance
	MemberName string `json:"miembro"`
}

// MemberAttendanceHistory is every visit of a member plus monthly figures.
type MemberAttendanceHistory struct {
	Member      *domain.Member      `json:"miembro"`
	Attendances []domain.Attendance `json:"asistencias"`
	ThisMonth   int64               `json:"asistenciasMes"`
}

type AttendanceService interface {
	// CheckIn opens a visit for an active, unexpired member without one open.
	CheckIn(ctx context.Context, memberID primitive.ObjectID) (*domain.Attendance, error)
	// CheckOut closes the open visit, recording whole minutes spent inside.
	CheckOut(ctx context.Context, memberID primitive.ObjectID) (*domain.Attendance, error)
	Status(ctx context.Context, memberID primitive.ObjectID) (*AttendanceStatus, error)
	MemberStatuses(ctx context.Context) ([]MemberAttendance, error)
	TodayHistory(ctx context.Context) ([]AttendanceEntry, error)
	MemberHistory(ctx context.Context, memberID primitive.ObjectID) (*MemberAttendanceHistory, error)
	CountInGym(ctx context.Context) (int64, error)
}

type attendanceService struct {
	attendanceRepo repository.AttendanceRepository
	memberRepo     repository.MemberRepository
	clock          Clock
}

func NewAttendanceService(attendanceRepo repository.AttendanceRepository, memberRepo repository.MemberRepository, clock Clock) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		memberRepo:     memberRepo,
		clock:          clock,
	}
}

func (s *attendanceService) member(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	m, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, internalError("attendance.member", err)
	}
	return m, nil
}

func (s *attendanceService) CheckIn(ctx context.Context, memberID primitive.ObjectID) (*domain.Attendance, error) {
	member, err := s.member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.Active {
		return nil, ErrMemberInactive
	}
	if member.IsExpired(s.clock.Today()) {
		return nil, ErrMembershipExpired
	}

	if _, err := s.attendanceRepo.FindOpenByMember(ctx, memberID); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("attendance.open", err)
	}

	attendance := &domain.Attendance{
		MemberID:  memberID,
		EnteredAt: s.clock.Now(),
		Open:      true,
	}
	if _, err := s.attendanceRepo.Create(ctx, attendance); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, internalError("attendance.create", err)
	}
	metrics.CheckIns.Inc()
	return attendance, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, memberID primitive.ObjectID) (*domain.Attendance, error) {
	if _, err := s.member(ctx, memberID); err != nil {
		return nil, err
	}
	attendance, err := s.attendanceRepo.FindOpenByMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, internalError("attendance.open", err)
	}

	attendance.Close(s.clock.Now())
	if err := s.attendanceRepo.Close(ctx, attendance); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, internalError("attendance.close", err)
	}
	metrics.CheckOuts.Inc()
	return attendance, nil
}

// stateOf derives the daily state. An open visit means present even when it
// started before midnight; otherwise any visit of today means attended.
func stateOf(open *domain.Attendance, today []domain.Attendance) (domain.AttendanceState, *time.Time) {
	if open != nil {
		entered := open.EnteredAt
		return domain.StatePresent, &entered
	}
	if len(today) > 0 {
		return domain.StateAttended, nil
	}
	return domain.StateAbsent, nil
}

func (s *attendanceService) Status(ctx context.Context, memberID primitive.ObjectID) (*AttendanceStatus, error) {
	if _, err := s.member(ctx, memberID); err != nil {
		return nil, err
	}
	open, err := s.attendanceRepo.FindOpenByMember(ctx, memberID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		open = nil
	case err != nil:
		return nil, internalError("attendance.open", err)
	}
	from, to := s.clock.TodayBounds()
	visits, err := s.attendanceRepo.ListByMemberBetween(ctx, memberID, from, to)
	if err != nil {
		return nil, internalError("attendance.status", err)
	}
	state, entered := stateOf(open, visits)
	return &AttendanceStatus{
		InGym:     open != nil,
		EnteredAt: entered,
		State:     state,
	}, nil
}

func (s *attendanceService) MemberStatuses(ctx context.Context) ([]MemberAttendance, error) {
	members, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		return nil, internalError("attendance.members", err)
	}
	from, to := s.clock.TodayBounds()
	today, err := s.attendanceRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, internalError("attendance.today", err)
	}

	open, err := s.attendanceRepo.ListOpen(ctx)
	if err != nil {
		return nil, internalError("attendance.open", err)
	}

	byMember := make(map[primitive.ObjectID][]domain.Attendance)
	for _, a := range today {
		byMember[a.MemberID] = append(byMember[a.MemberID], a)
	}
	openByMember := make(map[primitive.ObjectID]*domain.Attendance, len(open))
	for i := range open {
		openByMember[open[i].MemberID] = &open[i]
	}

	out := make([]MemberAttendance, 0, len(members))
	for _, m := range members {
		state, entered := stateOf(openByMember[m.ID], byMember[m.ID])
		out = append(out, MemberAttendance{
			MemberID:  m.ID,
			Name:      m.Name,
			DNI:       m.DNI,
			State:     state,
			EnteredAt: entered,
		})
	}
	return out, nil
}

func (s *attendanceService) TodayHistory(ctx context.Context) ([]AttendanceEntry, error) {
	from, to := s.clock.TodayBounds()
	visits, err := s.attendanceRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, internalError("attendance.history", err)
	}

	names := make(map[primitive.ObjectID]string)
	out := make([]AttendanceEntry, 0, len(visits))
	for _, a := range visits {
		name, ok := names[a.MemberID]
		if !ok {
			if m, err := s.memberRepo.GetByID(ctx, a.MemberID); err == nil {
				name = m.Name
			}
			names[a.MemberID] = name
		}
		out = append(out, AttendanceEntry{Attendance: a, MemberName: name})
	}
	return out, nil
}

func (s *attendanceService) MemberHistory(ctx context.Context, memberID primitive.ObjectID) (*MemberAttendanceHistory, error) {
	member, err := s.member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	visits, err := s.attendanceRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, internalError("attendance.memberHistory", err)
	}
	from, to := s.clock.MonthBounds()
	month, err := s.attendanceRepo.CountByMemberBetween(ctx, memberID, from, to)
	if err != nil {
		return nil, internalError("attendance.memberMonth", err)
	}
	member.PasswordHash = ""
	return &MemberAttendanceHistory{Member: member, Attendances: visits, ThisMonth: month}, nil
}

func (s *attendanceService) CountInGym(ctx context.Context) (int64, error) {
	n, err := s.attendanceRepo.CountOpen(ctx)
	if err != nil {
		return 0, internalError("attendance.countOpen", err)
	}
	return n, nil
}
