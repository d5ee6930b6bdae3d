package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	expiringWindowDays = 7
	popularClassesTop  = 5
)

// PlanDistribution counts active members per tier. Members on any other
// plan are left out of both buckets.
type PlanDistribution struct {
	Basic          int64 `json:"Basico"`
	Premium        int64 `json:"Premium"`
	BasicPercent   int   `json:"porcentajeBasico"`
	PremiumPercent int   `json:"porcentajePremium"`
}

// NewPlanDistribution truncates the Basico share and gives Premium the
// remainder, so the two percentages always add up to 100.
func NewPlanDistribution(basic, premium int64) PlanDistribution {
	d := PlanDistribution{Basic: basic, Premium: premium}
	total := basic + premium
	if total > 0 {
		d.BasicPercent = int(basic * 100 / total)
		d.PremiumPercent = 100 - d.BasicPercent
	}
	return d
}

type ClassSummary struct {
	ID         primitive.ObjectID `json:"id"`
	Name       string             `json:"nombre"`
	Instructor string             `json:"instructor"`
	Weekday    string             `json:"diaSemana"`
	StartTime  string             `json:"horaInicio"`
	Enrolled   int64              `json:"inscritos"`
	Capacity   *int               `json:"capacidad"`
}

type Totals struct {
	Members            int64 `json:"totalMiembros"`
	Classes            int64 `json:"totalClases"`
	Instructors        int64 `json:"totalInstructores"`
	ActiveReservations int64 `json:"reservasActivas"`
}

type DashboardMetrics struct {
	ActiveMembers     int64            `json:"miembrosActivos"`
	ActiveMemberships int64            `json:"membresiasActivas"`
	AttendanceToday   int64            `json:"asistenciasHoy"`
	InGym             int64            `json:"enGimnasio"`
	MonthlyRevenue    float64          `json:"ingresosMes"`
	Distribution      PlanDistribution `json:"distribucionPlanes"`
	Classes           []ClassSummary   `json:"resumenClases"`
	ExpiringSoon      []domain.Member  `json:"miembrosProximosAVencer"`
	Expired           []domain.Member  `json:"miembrosVencidos"`
	Totals            Totals           `json:"totales"`
}

type ClassPopularity struct {
	Name         string `json:"nombre"`
	Reservations int64  `json:"reservas"`
}

type MonthlyReport struct {
	NewMembers     int64             `json:"nuevosMiembros"`
	Revenue        float64           `json:"ingresosMes"`
	ActiveMembers  int64             `json:"miembrosActivos"`
	Sessions       int64             `json:"asistenciasMes"`
	PopularClasses []ClassPopularity `json:"clasesPopulares"`
}

type DashboardService interface {
	Metrics(ctx context.Context) (*DashboardMetrics, error)
	MonthlyReport(ctx context.Context) (*MonthlyReport, error)
}

type dashboardService struct {
	repos repository.Repositories
	clock Clock
}

func NewDashboardService(repos repository.Repositories, clock Clock) DashboardService {
	return &dashboardService{repos: repos, clock: clock}
}

// activeWithPlans loads active members together with the plan catalog.
func (s *dashboardService) activeWithPlans(ctx context.Context) ([]domain.Member, map[primitive.ObjectID]domain.Plan, error) {
	members, err := s.repos.Members.ListActive(ctx)
	if err != nil {
		return nil, nil, internalError("dashboard.active", err)
	}
	plans, err := planIndex(ctx, s.repos.Plans)
	if err != nil {
		return nil, nil, err
	}
	return members, plans, nil
}

func revenueOf(members []domain.Member, plans map[primitive.ObjectID]domain.Plan) float64 {
	var total float64
	for _, m := range members {
		if p, ok := plans[m.PlanID]; ok {
			total += p.Price
		}
	}
	return total
}

func distributionOf(members []domain.Member, plans map[primitive.ObjectID]domain.Plan) PlanDistribution {
	var basic, premium int64
	for _, m := range members {
		p, ok := plans[m.PlanID]
		if !ok {
			continue
		}
		switch {
		case p.IsBasic():
			basic++
		case p.IsPremium():
			premium++
		}
	}
	return NewPlanDistribution(basic, premium)
}

func (s *dashboardService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	members, plans, err := s.activeWithPlans(ctx)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()

	m := &DashboardMetrics{
		ActiveMembers:  int64(len(members)),
		MonthlyRevenue: revenueOf(members, plans),
		Distribution:   distributionOf(members, plans),
	}

	if m.ActiveMemberships, err = s.repos.Members.CountUnexpired(ctx, today); err != nil {
		return nil, internalError("dashboard.memberships", err)
	}
	if m.AttendanceToday, err = s.repos.Sessions.CountBetween(ctx, today, domain.AddDays(today, 1)); err != nil {
		return nil, internalError("dashboard.sessionsToday", err)
	}
	if m.InGym, err = s.repos.Attendances.CountOpen(ctx); err != nil {
		return nil, internalError("dashboard.inGym", err)
	}
	if m.Classes, err = s.classSummaries(ctx); err != nil {
		return nil, err
	}
	if m.ExpiringSoon, err = s.repos.Members.ListExpiringBetween(ctx, today, domain.AddDays(today, expiringWindowDays)); err != nil {
		return nil, internalError("dashboard.expiring", err)
	}
	if m.Expired, err = s.repos.Members.ListExpired(ctx, today); err != nil {
		return nil, internalError("dashboard.expired", err)
	}
	if m.Totals, err = s.totals(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *dashboardService) classSummaries(ctx context.Context) ([]ClassSummary, error) {
	classes, err := s.repos.Classes.List(ctx)
	if err != nil {
		return nil, internalError("dashboard.classes", err)
	}
	counts, err := s.repos.Reservations.ActiveCountsByClass(ctx)
	if err != nil {
		return nil, internalError("dashboard.counts", err)
	}
	names, err := instructorNames(ctx, s.repos.Instructors)
	if err != nil {
		return nil, err
	}

	out := make([]ClassSummary, 0, len(classes))
	for _, c := range classes {
		instructor := "Sin asignar"
		if c.InstructorID != nil {
			if name, ok := names[*c.InstructorID]; ok {
				instructor = name
			}
		}
		out = append(out, ClassSummary{
			ID:         c.ID,
			Name:       c.Name,
			Instructor: instructor,
			Weekday:    c.Weekday,
			StartTime:  c.StartTime,
			Enrolled:   counts[c.ID],
			Capacity:   c.Capacity,
		})
	}
	return out, nil
}

func (s *dashboardService) totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error
	if t.Members, err = s.repos.Members.Count(ctx); err != nil {
		return t, internalError("dashboard.totalMembers", err)
	}
	if t.Classes, err = s.repos.Classes.Count(ctx); err != nil {
		return t, internalError("dashboard.totalClasses", err)
	}
	if t.Instructors, err = s.repos.Instructors.Count(ctx); err != nil {
		return t, internalError("dashboard.totalInstructors", err)
	}
	if t.ActiveReservations, err = s.repos.Reservations.CountActive(ctx); err != nil {
		return t, internalError("dashboard.reservations", err)
	}
	return t, nil
}

func (s *dashboardService) MonthlyReport(ctx context.Context) (*MonthlyReport, error) {
	members, plans, err := s.activeWithPlans(ctx)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	from, to := domain.MonthRange(today)

	r := &MonthlyReport{
		ActiveMembers: int64(len(members)),
		Revenue:       revenueOf(members, plans),
	}
	if r.NewMembers, err = s.repos.Members.CountRegisteredBetween(ctx, from, to); err != nil {
		return nil, internalError("report.newMembers", err)
	}
	if r.Sessions, err = s.repos.Sessions.CountBetween(ctx, from, to); err != nil {
		return nil, internalError("report.sessions", err)
	}
	if r.PopularClasses, err = s.popularClasses(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *dashboardService) popularClasses(ctx context.Context) ([]ClassPopularity, error) {
	classes, err := s.repos.Classes.List(ctx)
	if err != nil {
		return nil, internalError("report.classes", err)
	}
	counts, err := s.repos.Reservations.ActiveCountsByClass(ctx)
	if err != nil {
		return nil, internalError("report.counts", err)
	}

	out := make([]ClassPopularity, 0, len(classes))
	for _, c := range classes {
		out = append(out, ClassPopularity{Name: c.Name, Reservations: counts[c.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Reservations > out[j].Reservations })
	if len(out) > popularClassesTop {
		out = out[:popularClassesTop]
	}
	return out, nil
}
