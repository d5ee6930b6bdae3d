package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlanName(t *testing.T) {
	tests := map[string]string{
		"PLAN BÁSICO":  "Basico",
		"PLAN BASICO":  "Basico",
		"PLAN PREMIUM": "Premium",
		"  Premium ":   "Premium",
		"basico":       "basico",
	}
	for raw, want := range tests {
		assert.Equal(t, want, NormalizePlanName(raw), raw)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Basico", Capitalize("basico"))
	assert.Equal(t, "Premium", Capitalize("PREMIUM"))
	assert.Equal(t, "Élite", Capitalize("élite"))
	assert.Equal(t, "", Capitalize(""))
}

func TestPlanTier(t *testing.T) {
	assert.True(t, (&Plan{Name: "PREMIUM"}).IsPremium())
	assert.True(t, (&Plan{Name: "basico"}).IsBasic())
	assert.False(t, (&Plan{Name: "Basico"}).IsPremium())
	var none *Plan
	assert.False(t, none.IsPremium())
}
