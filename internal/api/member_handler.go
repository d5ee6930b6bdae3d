package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	memberRoutinesPath  = "/miembro/rutinas"
	memberObjectivePath = "/miembro/rutinas/seleccionar-objetivo"
	memberClassesPath   = "/miembro/clases"
	memberProfilePath   = "/miembro/perfil"
)

// MemberHandler serves the member area. Every route runs behind
// RequireRole(domain.RoleMember, ...).
type MemberHandler struct {
	memberService     service.MemberService
	classService      service.ClassService
	routineService    service.RoutineService
	attendanceService service.AttendanceService
	clock             service.Clock
	sessions          *Sessions
}

func NewMemberHandler(
	memberService service.MemberService,
	classService service.ClassService,
	routineService service.RoutineService,
	attendanceService service.AttendanceService,
	clock service.Clock,
	sessions *Sessions,
) *MemberHandler {
	return &MemberHandler{
		memberService:     memberService,
		classService:      classService,
		routineService:    routineService,
		attendanceService: attendanceService,
		clock:             clock,
		sessions:          sessions,
	}
}

type ProfileRequest struct {
	Name  string `form:"nombre" json:"nombre"`
	Email string `form:"email" json:"email"`
	Phone string `form:"telefono" json:"telefono"`
}

type ReserveRequest struct {
	ClassID string `form:"claseId" json:"claseId" binding:"required"`
}

type CancelReservationRequest struct {
	ReservationID string `form:"reservaId" json:"reservaId" binding:"required"`
}

type AssignRoutineRequest struct {
	Objective string `form:"objetivo" json:"objetivo" binding:"required"`
	Level     string `form:"nivel" json:"nivel" binding:"required"`
}

type LogSessionRequest struct {
	Notes string `form:"notas" json:"notas"`
}

// memberID resolves the logged-in member or answers the request itself.
func (h *MemberHandler) memberID(c *gin.Context) (primitive.ObjectID, bool) {
	oid, ok := principalID(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, sessionExpired)
		return oid, false
	}
	return oid, true
}

func (h *MemberHandler) Dashboard(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	summary, err := h.memberService.Summary(ctx, id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	status, err := h.attendanceService.Status(ctx, id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	overview, err := h.routineService.Overview(ctx, id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "dashboard", gin.H{
		"miembro":    summary,
		"asistencia": status,
		"rutina":     overview,
	})
}

func (h *MemberHandler) Profile(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	summary, err := h.memberService.Summary(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	data := gin.H{"miembro": summary, "edad": nil}
	if summary.BirthDate != nil {
		data["edad"] = h.clock.Today().Year() - summary.BirthDate.Year()
	}
	h.sessions.render(c, "perfil", data)
}

func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, memberProfilePath, session.FlashError, "Datos inválidos")
		return
	}
	member, err := h.memberService.UpdateProfile(c.Request.Context(), id, service.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err == nil {
		// Keep the greeting in sync with the new name.
		if p := principal(c); p != nil {
			p.Name = member.Name
			currentSession(c).Data.SetPrincipal(p)
		}
	}
	h.sessions.redirectResult(c, memberProfilePath, err, "Datos actualizados")
}

func (h *MemberHandler) Classes(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	classes, err := h.classService.ForMember(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "clases", gin.H{
		"plan":          classes.PlanName,
		"puedeReservar": classes.CanReserve,
		"clases":        classes.Classes,
		"reservas":      classes.Reservations,
	})
}

func (h *MemberHandler) Reserve(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req ReserveRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, memberClassesPath, session.FlashError, service.ErrClassNotFound.Message)
		return
	}
	classID, ok := objectID(req.ClassID)
	if !ok {
		h.sessions.redirect(c, memberClassesPath, session.FlashError, service.ErrClassNotFound.Message)
		return
	}
	_, err := h.classService.Reserve(c.Request.Context(), id, classID)
	h.sessions.redirectResult(c, memberClassesPath, err, "Reserva realizada exitosamente")
}

func (h *MemberHandler) CancelReservation(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req CancelReservationRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, memberClassesPath, session.FlashError, service.ErrReservationNotFound.Message)
		return
	}
	reservationID, ok := objectID(req.ReservationID)
	if !ok {
		h.sessions.redirect(c, memberClassesPath, session.FlashError, service.ErrReservationNotFound.Message)
		return
	}
	err := h.classService.CancelReservation(c.Request.Context(), id, reservationID)
	h.sessions.redirectResult(c, memberClassesPath, err, "Reserva cancelada exitosamente")
}

// Routines shows the assigned routine, or sends the member to pick one.
func (h *MemberHandler) Routines(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	overview, err := h.routineService.Overview(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	if overview.Assignment == nil {
		c.Redirect(http.StatusSeeOther, memberObjectivePath)
		return
	}
	h.sessions.render(c, "rutinas", gin.H{
		"asignacion": overview.Assignment,
		"rutina":     overview.Routine,
		"ejercicios": overview.Exercises,
		"progreso":   overview.Progress,
		"historial":  overview.RecentSessions,
	})
}

func (h *MemberHandler) SelectObjective(c *gin.Context) {
	h.sessions.render(c, "seleccionar-objetivo", gin.H{"objetivos": h.routineService.Objectives()})
}

func (h *MemberHandler) SelectLevel(c *gin.Context) {
	objective := c.Query("objetivo")
	if !domain.ValidObjective(objective) {
		h.sessions.redirect(c, memberObjectivePath, session.FlashError, "Selecciona un objetivo válido")
		return
	}
	h.sessions.render(c, "seleccionar-nivel", gin.H{
		"objetivo": objective,
		"niveles":  h.routineService.Levels(),
	})
}

func (h *MemberHandler) AssignRoutine(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req AssignRoutineRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, memberObjectivePath, session.FlashError, "Selecciona un objetivo y un nivel")
		return
	}
	_, err := h.routineService.Assign(c.Request.Context(), id, req.Objective, req.Level)
	if err != nil {
		h.sessions.redirect(c, memberObjectivePath, session.FlashError, service.Message(err))
		return
	}
	h.sessions.redirect(c, memberRoutinesPath, session.FlashSuccess, "Rutina asignada exitosamente")
}

func (h *MemberHandler) CancelRoutine(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	if err := h.routineService.CancelCurrent(c.Request.Context(), id); err != nil {
		h.sessions.redirect(c, memberRoutinesPath, session.FlashError, service.Message(err))
		return
	}
	h.sessions.redirect(c, memberObjectivePath, session.FlashSuccess, "Rutina cancelada. Ahora puedes seleccionar una nueva.")
}

func (h *MemberHandler) LogSession(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	var req LogSessionRequest
	_ = c.ShouldBind(&req)
	_, err := h.routineService.LogSession(c.Request.Context(), id, req.Notes)
	h.sessions.redirectResult(c, memberRoutinesPath, err, "Sesión registrada exitosamente")
}

func (h *MemberHandler) Progress(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	overview, err := h.routineService.Overview(ctx, id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	history, err := h.attendanceService.MemberHistory(ctx, id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "progreso", gin.H{
		"rutina":         overview.Routine,
		"progreso":       overview.Progress,
		"historial":      overview.RecentSessions,
		"asistencias":    history.Attendances,
		"asistenciasMes": history.ThisMonth,
	})
}
