package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Instructor leads group classes. Instructors are only ever deactivated.
type Instructor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"nombre"`
	DNI       string             `bson:"dni" json:"dni"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"telefono"`
	Specialty string             `bson:"specialty" json:"especialidad"`
	HiredAt   time.Time          `bson:"hiredAt" json:"fechaContratacion"`
	Active    bool               `bson:"active" json:"activo"`
	CreatedAt time.Time          `bson:"createdAt" json:"-"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"-"`
}
