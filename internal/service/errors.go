package service

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// Kind classifies a service failure so handlers can pick a status code or
// flash type without inspecting the message.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindForbidden
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is returned by every service operation. Message is safe to show to
// the user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so a wrapped
// sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return ErrInternal.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func validation(msg string) error {
	return newError(KindValidation, msg)
}

// internalError logs an unexpected failure and hides it behind ErrInternal.
func internalError(op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("unexpected persistence failure")
	return &Error{Kind: KindInternal, Message: ErrInternal.Message, Err: err}
}

var (
	ErrInternal = newError(KindInternal, "Ocurrió un error inesperado. Intenta nuevamente.")

	ErrInvalidAdminCredentials  = newError(KindUnauthenticated, "Usuario o contraseña incorrectos")
	ErrInvalidMemberCredentials = newError(KindUnauthenticated, "DNI o contraseña incorrectos")
	ErrAdminInactive            = newError(KindForbidden, "La cuenta de administrador está desactivada")
	ErrAdminExists              = newError(KindConflict, "Ya existe un administrador con ese usuario o email")

	ErrMemberNotFound    = newError(KindNotFound, "Miembro no encontrado")
	ErrEmailTaken        = newError(KindConflict, "El email ya está registrado")
	ErrDNITaken          = newError(KindConflict, "El DNI ya está registrado")
	ErrMemberExists      = newError(KindConflict, "Ya existe un miembro con ese email o DNI")
	ErrMemberInactive    = newError(KindForbidden, "La cuenta del miembro está inactiva")
	ErrMembershipExpired = newError(KindForbidden, "La membresía está vencida")

	ErrPlanNotFound    = newError(KindNotFound, "Plan no encontrado")
	ErrPlanUnavailable = newError(KindValidation, "El plan seleccionado no está disponible")
	ErrPlanNameTaken   = newError(KindConflict, "Ya existe un plan con ese nombre")

	ErrInstructorNotFound = newError(KindNotFound, "Instructor no encontrado")
	ErrInstructorExists   = newError(KindConflict, "Ya existe un instructor con ese DNI o email")

	ErrClassNotFound        = newError(KindNotFound, "Clase no encontrada")
	ErrClassNameTaken       = newError(KindConflict, "Ya existe una clase con ese nombre")
	ErrClassUnavailable     = newError(KindValidation, "La clase no está disponible")
	ErrPremiumRequired      = newError(KindForbidden, "Solo los miembros con plan Premium pueden reservar clases")
	ErrAlreadyReserved      = newError(KindConflict, "Ya tienes una reserva activa para esta clase")
	ErrClassFull            = newError(KindConflict, "No hay cupos disponibles para esta clase")
	ErrReservationNotFound  = newError(KindNotFound, "Reserva no encontrada")
	ErrReservationNotOwned  = newError(KindForbidden, "No puedes cancelar esta reserva")
	ErrReservationNotActive = newError(KindConflict, "La reserva ya fue cancelada")
	ErrUploadUnavailable    = newError(KindValidation, "La carga de imágenes no está configurada")

	ErrAlreadyCheckedIn = newError(KindConflict, "El miembro ya tiene una entrada registrada sin salida")
	ErrNotCheckedIn     = newError(KindConflict, "El miembro no tiene una entrada registrada")

	ErrRoutineNotFound        = newError(KindNotFound, "No se encontró una rutina para ese objetivo y nivel")
	ErrRoutineAlreadyAssigned = newError(KindConflict, "Ya tienes una rutina asignada")
	ErrNoActiveRoutine        = newError(KindNotFound, "No tienes una rutina asignada")
	ErrSessionNotFound        = newError(KindNotFound, "Sesión no encontrada")
)
