package service

import (
	"alcyxob/gym-manager/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoutine(t *testing.T, f *fixture, svc RoutineService, freq int) *domain.PredefinedRoutine {
	t.Helper()
	r, err := svc.CreateRoutine(f.ctx, RoutineInput{
		Name:            "Quema grasa",
		Objective:       "Bajar Peso",
		Level:           "Principiante",
		DurationMinutes: 45,
		WeeklyFrequency: freq,
	})
	require.NoError(t, err)
	for i, name := range []string{"Sentadillas", "Burpees", "Plancha"} {
		_, err := svc.AddExercise(f.ctx, r.ID, ExerciseInput{Name: name, Sets: 3, Reps: 12, Order: 3 - i})
		require.NoError(t, err)
	}
	return r
}

func TestAssignRoutine(t *testing.T) {
	f := newFixture(t)
	svc := NewRoutineService(f.repos, f.clock)
	seedRoutine(t, f, svc, 3)
	m := f.addMember(t, "Ana", "10000001", f.basic)

	_, err := svc.Assign(f.ctx, m.ID, "Tonificar", "Avanzado")
	assert.ErrorIs(t, err, ErrRoutineNotFound)

	_, err = svc.Assign(f.ctx, m.ID, "Volar", "Principiante")
	assert.Equal(t, KindValidation, KindOf(err))

	a, err := svc.Assign(f.ctx, m.ID, "Bajar Peso", "Principiante")
	require.NoError(t, err)
	assert.True(t, a.Active)

	_, err = svc.Assign(f.ctx, m.ID, "Bajar Peso", "Principiante")
	assert.ErrorIs(t, err, ErrRoutineAlreadyAssigned)

	require.NoError(t, svc.CancelCurrent(f.ctx, m.ID))
	assert.ErrorIs(t, svc.CancelCurrent(f.ctx, m.ID), ErrNoActiveRoutine)

	_, err = svc.Assign(f.ctx, m.ID, "Bajar Peso", "Principiante")
	assert.NoError(t, err)
}

func TestRoutineOverview(t *testing.T) {
	f := newFixture(t)
	svc := NewRoutineService(f.repos, f.clock)
	seedRoutine(t, f, svc, 2)
	m := f.addMember(t, "Ana", "10000001", f.basic)

	empty, err := svc.Overview(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, empty.Assignment)

	_, err = svc.LogSession(f.ctx, m.ID, "sin rutina")
	assert.ErrorIs(t, err, ErrNoActiveRoutine)

	_, err = svc.Assign(f.ctx, m.ID, "Bajar Peso", "Principiante")
	require.NoError(t, err)

	// Two sessions last month, four this month (two on the same day).
	f.now = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := svc.LogSession(f.ctx, m.ID, "")
		require.NoError(t, err)
	}
	for _, day := range []int{2, 5, 9, 9} {
		f.now = time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		_, err := svc.LogSession(f.ctx, m.ID, "ok")
		require.NoError(t, err)
	}
	f.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	o, err := svc.Overview(f.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, o.Progress)

	names := []string{}
	for _, ex := range o.Exercises {
		names = append(names, ex.Name)
	}
	assert.Equal(t, []string{"Plancha", "Burpees", "Sentadillas"}, names)

	p := o.Progress
	assert.EqualValues(t, 4, p.SessionsThisMonth)
	assert.EqualValues(t, 2, p.SessionsLastMonth)
	assert.EqualValues(t, 6, p.TotalSessions)
	assert.Equal(t, 8, p.MonthlyGoal)
	assert.Equal(t, 50, p.Percent)
	assert.Equal(t, 4, p.Remaining)
	assert.Equal(t, 100, p.MonthOverMonth)
	require.NotNil(t, p.LastSession)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), *p.LastSession)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), p.NextSession)
	assert.Len(t, o.RecentSessions, 6)
}

func TestCreateRoutine_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewRoutineService(f.repos, f.clock)

	_, err := svc.CreateRoutine(f.ctx, RoutineInput{Name: "X", Objective: "Tonificar", Level: "Intermedio", WeeklyFrequency: 0})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.AddExercise(f.ctx, missingID, ExerciseInput{Name: "Remo"})
	assert.Equal(t, KindNotFound, KindOf(err))

	assert.Equal(t, domain.Objectives, svc.Objectives())
	assert.Equal(t, domain.Levels, svc.Levels())
}
