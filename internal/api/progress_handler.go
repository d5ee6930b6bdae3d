package api

import (
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

const routinesPath = "/admin/rutinas"

// ProgressHandler serves the admin view of member progress and the
// predefined routine catalog.
type ProgressHandler struct {
	progressService service.ProgressService
	routineService  service.RoutineService
	sessions        *Sessions
}

func NewProgressHandler(progressService service.ProgressService, routineService service.RoutineService, sessions *Sessions) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, routineService: routineService, sessions: sessions}
}

type MarkSessionRequest struct {
	Notes string `form:"notas" json:"notas"`
}

type RoutineRequest struct {
	Name            string `form:"nombre" json:"nombre"`
	Description     string `form:"descripcion" json:"descripcion"`
	Objective       string `form:"objetivo" json:"objetivo"`
	Level           string `form:"nivel" json:"nivel"`
	DurationMinutes int    `form:"duracionMinutos" json:"duracionMinutos"`
	WeeklyFrequency int    `form:"frecuenciaSemanal" json:"frecuenciaSemanal"`
}

type ExerciseRequest struct {
	Name         string `form:"nombre" json:"nombre"`
	Sets         int    `form:"series" json:"series"`
	Reps         int    `form:"repeticiones" json:"repeticiones"`
	RestSeconds  int    `form:"descansoSegundos" json:"descansoSegundos"`
	Order        int    `form:"orden" json:"orden"`
	Instructions string `form:"instrucciones" json:"instrucciones"`
}

func (h *ProgressHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	members, err := h.progressService.MembersWithRoutine(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	stats, err := h.progressService.Stats(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "progreso-admin", gin.H{"miembros": members, "estadisticas": stats})
}

func (h *ProgressHandler) Detail(c *gin.Context) {
	id, ok := objectID(c.Param("miembroId"))
	if !ok {
		h.sessions.redirect(c, "/admin/progreso", session.FlashError, service.ErrMemberNotFound.Message)
		return
	}
	detail, err := h.progressService.Detail(c.Request.Context(), id)
	if err != nil {
		h.sessions.redirect(c, "/admin/progreso", session.FlashError, service.Message(err))
		return
	}
	h.sessions.render(c, "progreso-detalle", gin.H{
		"miembro":    detail.Member,
		"asignacion": detail.Assignment,
		"rutina":     detail.Routine,
		"progreso":   detail.Progress,
		"historial":  detail.History,
	})
}

func (h *ProgressHandler) MarkSession(c *gin.Context) {
	id, ok := objectID(c.Param("miembroId"))
	if !ok {
		jsonResult(c, service.ErrMemberNotFound, "")
		return
	}
	var req MarkSessionRequest
	_ = c.ShouldBind(&req)
	_, err := h.progressService.MarkSession(c.Request.Context(), id, req.Notes)
	jsonResult(c, err, "Sesión completada registrada correctamente")
}

func (h *ProgressHandler) DeleteSession(c *gin.Context) {
	id, ok := objectID(c.Param("sesionId"))
	if !ok {
		jsonResult(c, service.ErrSessionNotFound, "")
		return
	}
	err := h.progressService.DeleteSession(c.Request.Context(), id)
	jsonResult(c, err, "Sesión eliminada correctamente")
}

func (h *ProgressHandler) Routines(c *gin.Context) {
	routines, err := h.routineService.ListRoutines(c.Request.Context())
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "rutinas-admin", gin.H{
		"rutinas":   routines,
		"objetivos": h.routineService.Objectives(),
		"niveles":   h.routineService.Levels(),
	})
}

func (h *ProgressHandler) CreateRoutine(c *gin.Context) {
	var req RoutineRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, routinesPath, session.FlashError, "Datos de la rutina inválidos")
		return
	}
	_, err := h.routineService.CreateRoutine(c.Request.Context(), service.RoutineInput{
		Name:            req.Name,
		Description:     req.Description,
		Objective:       req.Objective,
		Level:           req.Level,
		DurationMinutes: req.DurationMinutes,
		WeeklyFrequency: req.WeeklyFrequency,
	})
	h.sessions.redirectResult(c, routinesPath, err, "Rutina creada exitosamente")
}

func (h *ProgressHandler) AddExercise(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, routinesPath, session.FlashError, "Rutina no encontrada")
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, routinesPath, session.FlashError, "Datos del ejercicio inválidos")
		return
	}
	_, err := h.routineService.AddExercise(c.Request.Context(), id, service.ExerciseInput{
		Name:         req.Name,
		Sets:         req.Sets,
		Reps:         req.Reps,
		RestSeconds:  req.RestSeconds,
		Order:        req.Order,
		Instructions: req.Instructions,
	})
	h.sessions.redirectResult(c, routinesPath, err, "Ejercicio agregado exitosamente")
}

// Stats answers the general progress figures as JSON.
func (h *ProgressHandler) Stats(c *gin.Context) {
	stats, err := h.progressService.Stats(c.Request.Context())
	if err != nil {
		jsonResult(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}
