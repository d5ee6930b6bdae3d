package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PredefinedRoutine is a catalog routine selected by objective and level.
type PredefinedRoutine struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"nombre"`
	Description     string             `bson:"description" json:"descripcion"`
	Objective       string             `bson:"objective" json:"objetivo"`
	Level           string             `bson:"level" json:"nivel"`
	DurationMinutes int                `bson:"durationMinutes" json:"duracion"`
	WeeklyFrequency int                `bson:"weeklyFrequency" json:"frecuenciaSemanal"`
	Active          bool               `bson:"active" json:"activo"`
	CreatedAt       time.Time          `bson:"createdAt" json:"-"`
}

// MonthlyGoal is the number of sessions expected in a month.
func (r *PredefinedRoutine) MonthlyGoal() int {
	if r == nil || r.WeeklyFrequency <= 0 {
		return 0
	}
	return r.WeeklyFrequency * 4
}

// RoutineExercise belongs to a routine and is shown sorted by Order.
type RoutineExercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID    primitive.ObjectID `bson:"routineId" json:"rutinaId"`
	Name         string             `bson:"name" json:"nombre"`
	Sets         int                `bson:"sets" json:"series"`
	Reps         int                `bson:"reps" json:"repeticiones"`
	RestSeconds  int                `bson:"restSeconds" json:"descanso"`
	Order        int                `bson:"order" json:"orden"`
	Instructions string             `bson:"instructions" json:"instrucciones"`
}

// RoutineAssignment binds a member to a routine. At most one is active per member.
type RoutineAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID   primitive.ObjectID `bson:"memberId" json:"miembroId"`
	RoutineID  primitive.ObjectID `bson:"routineId" json:"rutinaId"`
	AssignedAt time.Time          `bson:"assignedAt" json:"fechaAsignacion"`
	Objective  string             `bson:"objective" json:"objetivoSeleccionado"`
	Level      string             `bson:"level" json:"nivelSeleccionado"`
	Active     bool               `bson:"active" json:"activo"`
}

// CompletedSession is a logged workout. Several per day are allowed.
type CompletedSession struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"asignacionId"`
	MemberID     primitive.ObjectID `bson:"memberId" json:"miembroId"`
	CompletedOn  time.Time          `bson:"completedOn" json:"fechaCompletada"`
	Notes        string             `bson:"notes" json:"observaciones"`
	CreatedAt    time.Time          `bson:"createdAt" json:"-"`
}

// ProgressPercent is min(100, round(sessions*100/(weeklyFrequency*4))),
// or 0 when the frequency is unknown.
func ProgressPercent(sessions, weeklyFrequency int) int {
	if weeklyFrequency <= 0 {
		return 0
	}
	goal := float64(weeklyFrequency * 4)
	p := int(math.Round(float64(sessions) * 100 / goal))
	if p > 100 {
		return 100
	}
	return p
}

// RemainingSessions is how many sessions are still missing for the monthly goal.
func RemainingSessions(sessions, weeklyFrequency int) int {
	left := weeklyFrequency*4 - sessions
	if left < 0 {
		return 0
	}
	return left
}

// MonthOverMonth is the percentage change against last month, or 0 when
// last month had no sessions.
func MonthOverMonth(thisMonth, lastMonth int) int {
	if lastMonth == 0 {
		return 0
	}
	return (thisMonth - lastMonth) * 100 / lastMonth
}

// NextSession recommends the date of the next workout: last + 7/frequency
// days, or today when there is nothing to go on.
func NextSession(last *time.Time, weeklyFrequency int, today time.Time) time.Time {
	if last == nil || weeklyFrequency <= 0 {
		return CivilDate(today)
	}
	return AddDays(CivilDate(*last), 7/weeklyFrequency)
}

// Objectives and levels offered when a member picks a routine.
var (
	Objectives = []string{"Bajar Peso", "Tonificar", "Aumentar Masa Muscular"}
	Levels     = []string{"Principiante", "Intermedio", "Avanzado"}
)

// ValidObjective reports whether o is one of Objectives.
func ValidObjective(o string) bool { return contains(Objectives, o) }

// ValidLevel reports whether l is one of Levels.
func ValidLevel(l string) bool { return contains(Levels, l) }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
