package api

import (
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const instructorsPath = "/admin/instructores"

type InstructorHandler struct {
	instructorService service.InstructorService
	classService      service.ClassService
	sessions          *Sessions
}

func NewInstructorHandler(instructorService service.InstructorService, classService service.ClassService, sessions *Sessions) *InstructorHandler {
	return &InstructorHandler{instructorService: instructorService, classService: classService, sessions: sessions}
}

type InstructorRequest struct {
	Name      string `form:"nombre" json:"nombre"`
	DNI       string `form:"dni" json:"dni"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"telefono" json:"telefono"`
	Specialty string `form:"especialidad" json:"especialidad"`
	HiredAt   string `form:"fechaContratacion" json:"fechaContratacion"`
}

func (r InstructorRequest) input() (service.InstructorInput, bool) {
	in := service.InstructorInput{
		Name:      r.Name,
		DNI:       r.DNI,
		Email:     r.Email,
		Phone:     r.Phone,
		Specialty: r.Specialty,
	}
	if raw := strings.TrimSpace(r.HiredAt); raw != "" {
		hired, err := time.Parse(dateLayout, raw)
		if err != nil {
			return in, false
		}
		in.HiredAt = hired
	}
	return in, true
}

// List shows every instructor, or only one specialty with ?especialidad=.
// With ?instructorId= the instructor's classes are included.
func (h *InstructorHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	data := gin.H{}

	var err error
	if specialty := strings.TrimSpace(c.Query("especialidad")); specialty != "" {
		data["especialidad"] = specialty
		data["instructores"], err = h.instructorService.ListBySpecialty(ctx, specialty)
	} else {
		data["instructores"], err = h.instructorService.List(ctx)
	}
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}

	if raw := c.Query("instructorId"); raw != "" {
		id, ok := objectID(raw)
		if !ok {
			abortWithError(c, statusFor(service.KindNotFound), service.ErrInstructorNotFound.Message)
			return
		}
		classes, err := h.classService.ListByInstructor(ctx, id)
		if err != nil {
			abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
			return
		}
		data["clasesInstructor"] = classes
	}
	h.sessions.render(c, "instructores-admin", data)
}

func (h *InstructorHandler) Create(c *gin.Context) {
	var req InstructorRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, instructorsPath, session.FlashError, "Datos del instructor inválidos")
		return
	}
	in, ok := req.input()
	if !ok {
		h.sessions.redirect(c, instructorsPath, session.FlashError, "Datos del instructor inválidos")
		return
	}
	_, err := h.instructorService.Create(c.Request.Context(), in)
	h.sessions.redirectResult(c, instructorsPath, err, "Instructor creado exitosamente")
}

func (h *InstructorHandler) Update(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, instructorsPath, session.FlashError, service.ErrInstructorNotFound.Message)
		return
	}
	var req InstructorRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, instructorsPath, session.FlashError, "Datos del instructor inválidos")
		return
	}
	in, ok := req.input()
	if !ok {
		h.sessions.redirect(c, instructorsPath, session.FlashError, "Datos del instructor inválidos")
		return
	}
	_, err := h.instructorService.Update(c.Request.Context(), id, in)
	h.sessions.redirectResult(c, instructorsPath, err, "Instructor actualizado exitosamente")
}

func (h *InstructorHandler) Delete(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, instructorsPath, session.FlashError, service.ErrInstructorNotFound.Message)
		return
	}
	err := h.instructorService.Deactivate(c.Request.Context(), id)
	h.sessions.redirectResult(c, instructorsPath, err, "Instructor desactivado")
}

func (h *InstructorHandler) ToggleActive(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, instructorsPath, session.FlashError, service.ErrInstructorNotFound.Message)
		return
	}
	_, err := h.instructorService.ToggleActive(c.Request.Context(), id)
	h.sessions.redirectResult(c, instructorsPath, err, "Estado del instructor actualizado")
}
