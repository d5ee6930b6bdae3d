package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance is one gym visit. Open is true until the member checks out;
// a member can have at most one open attendance.
type Attendance struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID        primitive.ObjectID `bson:"memberId" json:"miembroId"`
	EnteredAt       time.Time          `bson:"enteredAt" json:"fechaHoraEntrada"`
	ExitedAt        *time.Time         `bson:"exitedAt,omitempty" json:"fechaHoraSalida,omitempty"`
	DurationMinutes *int               `bson:"durationMinutes,omitempty" json:"duracionMinutos,omitempty"`
	Open            bool               `bson:"open" json:"enGimnasio"`
}

// InGym reports whether the visit has not been closed yet.
func (a *Attendance) InGym() bool {
	return a.ExitedAt == nil
}

// Close records the exit and the whole minutes spent inside.
func (a *Attendance) Close(at time.Time) {
	minutes := int(at.Sub(a.EnteredAt) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	a.ExitedAt = &at
	a.DurationMinutes = &minutes
	a.Open = false
}

// AttendanceState is the daily status shown in the admin member list.
type AttendanceState string

const (
	StatePresent  AttendanceState = "Presente"
	StateAttended AttendanceState = "Asistió"
	StateAbsent   AttendanceState = "Ausente"
)
