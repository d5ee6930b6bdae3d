package service

import (
	"alcyxob/gym-manager/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInCheckOut(t *testing.T) {
	f := newFixture(t)
	svc := NewAttendanceService(f.repos.Attendances, f.repos.Members, f.clock)
	m := f.addMember(t, "Ana", "10000001", f.basic)

	_, err := svc.CheckOut(f.ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotCheckedIn)

	in, err := svc.CheckIn(f.ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, in.InGym())

	_, err = svc.CheckIn(f.ctx, m.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	f.now = f.now.Add(59*time.Minute + 59*time.Second)
	out, err := svc.CheckOut(f.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, out.DurationMinutes)
	assert.Equal(t, 59, *out.DurationMinutes)
	assert.False(t, out.InGym())

	_, err = svc.CheckOut(f.ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotCheckedIn)

	_, err = svc.CheckIn(f.ctx, m.ID)
	assert.NoError(t, err, "a new visit can start after checking out")
}

func TestCheckIn_Refusals(t *testing.T) {
	f := newFixture(t)
	svc := NewAttendanceService(f.repos.Attendances, f.repos.Members, f.clock)
	inactive := f.addMember(t, "Inactivo", "10000001", f.basic)
	_, err := f.members().SetActive(f.ctx, inactive.ID, false)
	require.NoError(t, err)
	expired := f.addMember(t, "Vencido", "10000002", f.basic)

	_, err = svc.CheckIn(f.ctx, missingID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = svc.CheckIn(f.ctx, inactive.ID)
	assert.ErrorIs(t, err, ErrMemberInactive)

	f.now = f.now.AddDate(0, 2, 0)
	_, err = svc.CheckIn(f.ctx, expired.ID)
	assert.ErrorIs(t, err, ErrMembershipExpired)
}

func TestAttendanceStatuses(t *testing.T) {
	f := newFixture(t)
	svc := NewAttendanceService(f.repos.Attendances, f.repos.Members, f.clock)
	present := f.addMember(t, "Ana", "10000001", f.basic)
	attended := f.addMember(t, "Beto", "10000002", f.basic)
	absent := f.addMember(t, "Caro", "10000003", f.basic)

	_, err := svc.CheckIn(f.ctx, attended.ID)
	require.NoError(t, err)
	f.now = f.now.Add(45 * time.Minute)
	_, err = svc.CheckOut(f.ctx, attended.ID)
	require.NoError(t, err)
	_, err = svc.CheckIn(f.ctx, present.ID)
	require.NoError(t, err)

	rows, err := svc.MemberStatuses(f.ctx)
	require.NoError(t, err)
	states := map[string]domain.AttendanceState{}
	for _, r := range rows {
		states[r.Name] = r.State
	}
	assert.Equal(t, map[string]domain.AttendanceState{
		"Ana":  domain.StatePresent,
		"Beto": domain.StateAttended,
		"Caro": domain.StateAbsent,
	}, states)

	status, err := svc.Status(f.ctx, present.ID)
	require.NoError(t, err)
	assert.True(t, status.InGym)
	require.NotNil(t, status.EnteredAt)
	assert.True(t, f.now.Equal(*status.EnteredAt))

	status, err = svc.Status(f.ctx, absent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAbsent, status.State)

	history, err := svc.TodayHistory(f.ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	inGym, err := svc.CountInGym(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inGym)

	mh, err := svc.MemberHistory(f.ctx, attended.ID)
	require.NoError(t, err)
	assert.Len(t, mh.Attendances, 1)
	assert.EqualValues(t, 1, mh.ThisMonth)
}

func TestStatus_OpenVisitSpansMidnight(t *testing.T) {
	f := newFixture(t)
	svc := NewAttendanceService(f.repos.Attendances, f.repos.Members, f.clock)
	m := f.addMember(t, "Ana", "10000001", f.basic)
	other := f.addMember(t, "Beto", "10000002", f.basic)

	f.now = time.Date(2026, 3, 15, 23, 50, 0, 0, time.UTC)
	in, err := svc.CheckIn(f.ctx, m.ID)
	require.NoError(t, err)

	f.now = f.now.Add(20 * time.Minute)

	status, err := svc.Status(f.ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, status.InGym)
	assert.Equal(t, domain.StatePresent, status.State)
	require.NotNil(t, status.EnteredAt)
	assert.True(t, in.EnteredAt.Equal(*status.EnteredAt))

	_, err = svc.CheckIn(f.ctx, m.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	inGym, err := svc.CountInGym(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inGym)

	rows, err := svc.MemberStatuses(f.ctx)
	require.NoError(t, err)
	states := map[string]domain.AttendanceState{}
	for _, r := range rows {
		states[r.Name] = r.State
	}
	assert.Equal(t, domain.StatePresent, states["Ana"])
	assert.Equal(t, domain.StateAbsent, states["Beto"])

	status, err = svc.Status(f.ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, status.InGym)
	assert.Nil(t, status.EnteredAt)

	out, err := svc.CheckOut(f.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, out.DurationMinutes)
	assert.Equal(t, 20, *out.DurationMinutes)

	status, err = svc.Status(f.ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, status.InGym)
	assert.Equal(t, domain.StateAbsent, status.State, "the visit started yesterday")
}
