package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupClass is a weekly scheduled class. A nil Capacity means unlimited seats.
type GroupClass struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"nombre"`
	Description  string              `bson:"description" json:"descripcion"`
	Weekday      string              `bson:"weekday" json:"diaSemana"`
	StartTime    string              `bson:"startTime" json:"horaInicio"`
	Duration     int                 `bson:"duration" json:"duracion"`
	Capacity     *int                `bson:"capacity,omitempty" json:"capacidad,omitempty"`
	ImageURL     string              `bson:"imageUrl" json:"imagenUrl"`
	ImageKey     string              `bson:"imageKey,omitempty" json:"-"`
	Active       bool                `bson:"active" json:"activa"`
	InstructorID *primitive.ObjectID `bson:"instructorId,omitempty" json:"instructorId,omitempty"`
	// SeatsTaken mirrors the number of ACTIVA reservations and is only
	// moved through conditional increments.
	SeatsTaken int       `bson:"seatsTaken" json:"-"`
	CreatedAt  time.Time `bson:"createdAt" json:"-"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"-"`
}

// ReservationStatus is the two-valued lifecycle of a reservation.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVA"
	ReservationCancelled ReservationStatus = "CANCELADA"
)

// Reservation is a member's claim on one seat of a class.
type Reservation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID   primitive.ObjectID `bson:"memberId" json:"miembroId"`
	ClassID    primitive.ObjectID `bson:"classId" json:"claseId"`
	ReservedAt time.Time          `bson:"reservedAt" json:"fechaReserva"`
	Status     ReservationStatus  `bson:"status" json:"estado"`
}

func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}
