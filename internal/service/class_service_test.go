package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReserve_CapacityOneScenario(t *testing.T) {
	f := newFixture(t)
	svc := f.classes()
	spin := f.addClass(t, "Spinning", intPtr(1))
	a := f.addMember(t, "Ana", "10000001", f.premium)
	b := f.addMember(t, "Beto", "10000002", f.premium)

	resA, err := svc.Reserve(f.ctx, a.ID, spin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationActive, resA.Status)

	_, err = svc.Reserve(f.ctx, b.ID, spin.ID)
	assert.ErrorIs(t, err, ErrClassFull)

	slots, err := svc.AvailableSlots(f.ctx, spin.ID)
	require.NoError(t, err)
	require.NotNil(t, slots)
	assert.Zero(t, *slots)

	require.NoError(t, svc.CancelReservation(f.ctx, a.ID, resA.ID))

	_, err = svc.Reserve(f.ctx, b.ID, spin.ID)
	require.NoError(t, err)
}

func TestReserve_Rules(t *testing.T) {
	f := newFixture(t)
	svc := f.classes()
	yoga := f.addClass(t, "Yoga", nil)
	premium := f.addMember(t, "Ana", "10000001", f.premium)
	basic := f.addMember(t, "Beto", "10000002", f.basic)

	_, err := svc.Reserve(f.ctx, basic.ID, yoga.ID)
	assert.ErrorIs(t, err, ErrPremiumRequired)

	_, err = svc.Reserve(f.ctx, premium.ID, missingID)
	assert.ErrorIs(t, err, ErrClassNotFound)

	_, err = svc.Reserve(f.ctx, missingID, yoga.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = svc.Reserve(f.ctx, premium.ID, yoga.ID)
	require.NoError(t, err)

	_, err = svc.Reserve(f.ctx, premium.ID, yoga.ID)
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	slots, err := svc.AvailableSlots(f.ctx, yoga.ID)
	require.NoError(t, err)
	assert.Nil(t, slots, "unlimited class has no slot count")

	_, err = svc.ToggleActive(f.ctx, yoga.ID)
	require.NoError(t, err)
	other := f.addMember(t, "Caro", "10000003", f.premium)
	_, err = svc.Reserve(f.ctx, other.ID, yoga.ID)
	assert.ErrorIs(t, err, ErrClassUnavailable)
}

func TestCancelReservation_Rules(t *testing.T) {
	f := newFixture(t)
	svc := f.classes()
	box := f.addClass(t, "Box", intPtr(10))
	owner := f.addMember(t, "Ana", "10000001", f.premium)
	intruder := f.addMember(t, "Beto", "10000002", f.premium)

	res, err := svc.Reserve(f.ctx, owner.ID, box.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CancelReservation(f.ctx, intruder.ID, res.ID), ErrReservationNotOwned)
	assert.ErrorIs(t, svc.CancelReservation(f.ctx, owner.ID, missingID), ErrReservationNotFound)
	require.NoError(t, svc.CancelReservation(f.ctx, owner.ID, res.ID))
	assert.ErrorIs(t, svc.CancelReservation(f.ctx, owner.ID, res.ID), ErrReservationNotActive)

	slots, err := svc.AvailableSlots(f.ctx, box.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, *slots)
}

// flakyClassRepo fails the first releaseFailures seat releases.
type flakyClassRepo struct {
	repository.ClassRepository
	releaseFailures int
	releaseCalls    int
}

func (r *flakyClassRepo) ReleaseSeat(ctx context.Context, id primitive.ObjectID) error {
	r.releaseCalls++
	if r.releaseFailures > 0 {
		r.releaseFailures--
		return errors.New("connection reset by peer")
	}
	return r.ClassRepository.ReleaseSeat(ctx, id)
}

func TestCancelReservation_RetriesSeatRelease(t *testing.T) {
	f := newFixture(t)
	spin := f.addClass(t, "Spinning", intPtr(1))
	a := f.addMember(t, "Ana", "10000001", f.premium)
	b := f.addMember(t, "Beto", "10000002", f.premium)

	flaky := &flakyClassRepo{ClassRepository: f.repos.Classes, releaseFailures: 2}
	f.repos.Classes = flaky
	svc := NewClassService(f.repos, nil)

	res, err := svc.Reserve(f.ctx, a.ID, spin.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	require.NoError(t, svc.CancelReservation(ctx, a.ID, res.ID))
	assert.Equal(t, 3, flaky.releaseCalls)

	_, err = svc.Reserve(f.ctx, b.ID, spin.ID)
	require.NoError(t, err, "the released seat can be booked again")
}

func TestReserve_ConcurrentLastSeats(t *testing.T) {
	f := newFixture(t)
	svc := f.classes()
	const seats, contenders = 3, 20
	hiit := f.addClass(t, "HIIT", intPtr(seats))

	members := make([]primitive.ObjectID, contenders)
	for i := range members {
		members[i] = f.addMember(t, fmt.Sprintf("M%02d", i), fmt.Sprintf("9%07d", i), f.premium).ID
	}

	var ok, full atomic.Int32
	var wg sync.WaitGroup
	for _, id := range members {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), id, hiit.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case KindOf(err) == KindConflict:
				full.Add(1)
			}
		}(id)
	}
	wg.Wait()

	assert.EqualValues(t, seats, ok.Load())
	assert.EqualValues(t, contenders-seats, full.Load())

	n, err := f.repos.Reservations.CountActiveByClass(f.ctx, hiit.ID)
	require.NoError(t, err)
	assert.EqualValues(t, seats, n)
}

func TestClassService_CRUD(t *testing.T) {
	f := newFixture(t)
	svc := f.classes()
	instructors := NewInstructorService(f.repos.Instructors, f.clock)
	carla, err := instructors.Create(f.ctx, InstructorInput{Name: "Carla", DNI: "1", Email: "c@example.com"})
	require.NoError(t, err)

	yoga := f.addClass(t, "Yoga", intPtr(12))

	_, err = svc.Create(f.ctx, ClassInput{Name: "Yoga"})
	assert.ErrorIs(t, err, ErrClassNameTaken)

	_, err = svc.Create(f.ctx, ClassInput{Name: "Zumba", Capacity: intPtr(0)})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Create(f.ctx, ClassInput{Name: "Zumba", InstructorID: &missingID})
	assert.ErrorIs(t, err, ErrInstructorNotFound)

	updated, err := svc.AssignInstructor(f.ctx, yoga.ID, &carla.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.InstructorID)
	assert.Equal(t, carla.ID, *updated.InstructorID)

	byInstructor, err := svc.ListByInstructor(f.ctx, carla.ID)
	require.NoError(t, err)
	assert.Len(t, byInstructor, 1)

	list, err := svc.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Carla", list[0].InstructorName)
	assert.EqualValues(t, 12, *list[0].Available)

	renamed, err := svc.Update(f.ctx, yoga.ID, ClassInput{Name: "Yoga Flow", Capacity: intPtr(8), Active: true, InstructorID: &carla.ID})
	require.NoError(t, err)
	assert.Equal(t, "Yoga Flow", renamed.Name)

	toggled, err := svc.ToggleActive(f.ctx, yoga.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	active, err := svc.ListActive(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestForMember(t *testing.T) {
	f := newFixture(t)
	svc := f.classes()
	yoga := f.addClass(t, "Yoga", intPtr(5))
	f.addClass(t, "Box", nil)
	m := f.addMember(t, "Ana", "10000001", f.premium)

	_, err := svc.Reserve(f.ctx, m.ID, yoga.ID)
	require.NoError(t, err)

	page, err := svc.ForMember(f.ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, page.CanReserve)
	assert.Equal(t, "Premium", page.PlanName)
	require.Len(t, page.Reservations, 1)
	assert.Equal(t, "Yoga", page.Reservations[0].Class.Name)

	reserved := map[string]bool{}
	for _, c := range page.Classes {
		reserved[c.Name] = c.ReservedByMe
	}
	assert.Equal(t, map[string]bool{"Yoga": true, "Box": false}, reserved)
}

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://upload.example.com/" + key, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestPrepareImageUpload(t *testing.T) {
	f := newFixture(t)
	yoga := f.addClass(t, "Yoga", nil)

	_, err := f.classes().PrepareImageUpload(f.ctx, yoga.ID, "image/png")
	assert.ErrorIs(t, err, ErrUploadUnavailable)

	store := &fakeStorage{}
	svc := NewClassService(f.repos, store)

	_, err = svc.PrepareImageUpload(f.ctx, yoga.ID, "application/pdf")
	assert.Equal(t, KindValidation, KindOf(err))

	first, err := svc.PrepareImageUpload(f.ctx, yoga.ID, "image/png")
	require.NoError(t, err)
	assert.Contains(t, first.ObjectKey, "classes/"+yoga.ID.Hex()+"/")
	assert.Equal(t, "https://cdn.example.com/"+first.ObjectKey, first.ImageURL)

	second, err := svc.PrepareImageUpload(f.ctx, yoga.ID, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ObjectKey}, store.deleted)

	stored, err := svc.Get(f.ctx, yoga.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ImageURL, stored.ImageURL)
}
