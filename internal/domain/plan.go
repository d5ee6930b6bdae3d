package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlanBasic   = "Basico"
	PlanPremium = "Premium"
)

// Plan is a membership tier. Reserving group classes requires Premium.
type Plan struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"nombre"`
	Price            float64            `bson:"price" json:"precio"`
	Description      string             `bson:"description" json:"descripcion"`
	ClassAccess      bool               `bson:"classAccess" json:"accesoClases"`
	PersonalTraining bool               `bson:"personalTraining" json:"asesoriaPersonalizada"`
	Active           bool               `bson:"active" json:"activo"`
	CreatedAt        time.Time          `bson:"createdAt" json:"-"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"-"`
}

// IsPremium matches the plan name case-insensitively.
func (p *Plan) IsPremium() bool {
	return p != nil && strings.EqualFold(p.Name, PlanPremium)
}

// IsBasic matches the plan name case-insensitively.
func (p *Plan) IsBasic() bool {
	return p != nil && strings.EqualFold(p.Name, PlanBasic)
}

// NormalizePlanName turns the label sent by the registration form
// ("PLAN BÁSICO", "PLAN PREMIUM", ...) into a stored plan name.
func NormalizePlanName(raw string) string {
	r := strings.NewReplacer(
		"PLAN ", "",
		"BÁSICO", PlanBasic,
		"BASICO", PlanBasic,
		"PREMIUM", PlanPremium,
	)
	return strings.TrimSpace(r.Replace(raw))
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// DefaultPlans are seeded on an empty database.
func DefaultPlans() []Plan {
	return []Plan{
		{
			Name:        PlanBasic,
			Price:       80,
			Description: "Acceso a sala de máquinas y zona de cardio en horario completo.",
			Active:      true,
		},
		{
			Name:             PlanPremium,
			Price:            150,
			Description:      "Acceso total, clases grupales ilimitadas y asesoría personalizada.",
			ClassAccess:      true,
			PersonalTraining: true,
			Active:           true,
		},
	}
}
