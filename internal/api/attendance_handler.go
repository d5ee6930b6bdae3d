package api

import (
	"alcyxob/gym-manager/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler serves the front desk check-in screen.
type AttendanceHandler struct {
	attendanceService service.AttendanceService
	sessions          *Sessions
}

func NewAttendanceHandler(attendanceService service.AttendanceService, sessions *Sessions) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService, sessions: sessions}
}

func (h *AttendanceHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	members, err := h.attendanceService.MemberStatuses(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	today, err := h.attendanceService.TodayHistory(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	inGym, err := h.attendanceService.CountInGym(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "asistencias-admin", gin.H{
		"miembros":           members,
		"asistenciasHoy":     today,
		"totalHoy":           len(today),
		"miembrosEnGimnasio": inGym,
	})
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	id, ok := objectID(c.Param("miembroId"))
	if !ok {
		jsonResult(c, service.ErrMemberNotFound, "")
		return
	}
	attendance, err := h.attendanceService.CheckIn(c.Request.Context(), id)
	if err != nil {
		jsonResult(c, err, "")
		return
	}
	jsonResult(c, nil, "Entrada registrada a las "+attendance.EnteredAt.Format("15:04"))
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	id, ok := objectID(c.Param("miembroId"))
	if !ok {
		jsonResult(c, service.ErrMemberNotFound, "")
		return
	}
	attendance, err := h.attendanceService.CheckOut(c.Request.Context(), id)
	if err != nil {
		jsonResult(c, err, "")
		return
	}
	minutes := 0
	if attendance.DurationMinutes != nil {
		minutes = *attendance.DurationMinutes
	}
	jsonResult(c, nil, fmt.Sprintf("Salida registrada. Duración: %d minutos", minutes))
}

// Status answers whether the member is inside and their visits this month.
func (h *AttendanceHandler) Status(c *gin.Context) {
	id, ok := objectID(c.Param("miembroId"))
	if !ok {
		jsonResult(c, service.ErrMemberNotFound, "")
		return
	}
	ctx := c.Request.Context()
	status, err := h.attendanceService.Status(ctx, id)
	if err != nil {
		jsonResult(c, err, "")
		return
	}
	history, err := h.attendanceService.MemberHistory(ctx, id)
	if err != nil {
		jsonResult(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enGimnasio":     status.InGym,
		"horaEntrada":    status.EnteredAt,
		"estado":         status.State,
		"asistenciasMes": history.ThisMonth,
	})
}

func (h *AttendanceHandler) History(c *gin.Context) {
	id, ok := objectID(c.Param("miembroId"))
	if !ok {
		abortWithError(c, http.StatusNotFound, service.ErrMemberNotFound.Message)
		return
	}
	history, err := h.attendanceService.MemberHistory(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "historial-asistencias", gin.H{
		"miembro":        history.Member,
		"asistencias":    history.Attendances,
		"asistenciasMes": history.ThisMonth,
	})
}
