package memory

import "alcyxob/gym-manager/internal/repository"

// NewRepositories returns an empty in-memory store for every entity.
func NewRepositories() repository.Repositories {
	return repository.Repositories{
		Members:        NewMemberRepository(),
		Administrators: NewAdministratorRepository(),
		Instructors:    NewInstructorRepository(),
		Plans:          NewPlanRepository(),
		Classes:        NewClassRepository(),
		Reservations:   NewReservationRepository(),
		Attendances:    NewAttendanceRepository(),
		Routines:       NewRoutineRepository(),
		Assignments:    NewAssignmentRepository(),
		Sessions:       NewSessionRepository(),
	}
}
