package service

import (
	"alcyxob/gym-manager/internal/repository/memory"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanService_CRUD(t *testing.T) {
	f := newFixture(t)
	svc := NewPlanService(f.repos.Plans)

	gold, err := svc.Create(f.ctx, PlanInput{Name: " Oro ", Price: 200, Active: true, ClassAccess: true})
	require.NoError(t, err)
	assert.Equal(t, "Oro", gold.Name)

	_, err = svc.Create(f.ctx, PlanInput{Name: "Oro", Price: 10})
	assert.ErrorIs(t, err, ErrPlanNameTaken)

	_, err = svc.Create(f.ctx, PlanInput{Name: "Barato", Price: -1})
	assert.Equal(t, KindValidation, KindOf(err))

	// Keeping its own name is not a conflict.
	updated, err := svc.Update(f.ctx, gold.ID, PlanInput{Name: "Oro", Price: 210, Active: true})
	require.NoError(t, err)
	assert.Equal(t, 210.0, updated.Price)

	_, err = svc.Update(f.ctx, gold.ID, PlanInput{Name: "Premium", Price: 210})
	assert.ErrorIs(t, err, ErrPlanNameTaken)

	require.NoError(t, svc.Deactivate(f.ctx, gold.ID))
	active, err := svc.ListActive(f.ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := svc.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	withClasses, err := svc.ListWithClassAccess(f.ctx)
	require.NoError(t, err)
	require.Len(t, withClasses, 1)
	assert.Equal(t, "Premium", withClasses[0].Name)

	_, err = svc.Get(f.ctx, missingID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_SeedDefaults(t *testing.T) {
	svc := NewPlanService(memory.NewPlanRepository())
	ctx := newFixture(t).ctx

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
