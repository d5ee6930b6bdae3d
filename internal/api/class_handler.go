package api

import (
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const classesPath = "/admin/clases"

// ClassHandler serves class administration.
type ClassHandler struct {
	classService      service.ClassService
	instructorService service.InstructorService
	sessions          *Sessions
}

func NewClassHandler(classService service.ClassService, instructorService service.InstructorService, sessions *Sessions) *ClassHandler {
	return &ClassHandler{classService: classService, instructorService: instructorService, sessions: sessions}
}

// ClassRequest is the class form. Capacity and instructor are optional.
type ClassRequest struct {
	Name         string `form:"nombre" json:"nombre"`
	Description  string `form:"descripcion" json:"descripcion"`
	Weekday      string `form:"diaSemana" json:"diaSemana"`
	StartTime    string `form:"horaInicio" json:"horaInicio"`
	Duration     int    `form:"duracion" json:"duracion"`
	Capacity     string `form:"capacidad" json:"capacidad"`
	ImageURL     string `form:"imagenUrl" json:"imagenUrl"`
	InstructorID string `form:"instructorId" json:"instructorId"`
	Active       *bool  `form:"activo" json:"activo"`
}

type AssignInstructorRequest struct {
	ClassID      string `form:"claseId" json:"claseId" binding:"required"`
	InstructorID string `form:"instructorId" json:"instructorId"`
}

type ImageUploadRequest struct {
	ContentType string `form:"contentType" json:"contentType" binding:"required"`
}

func (r ClassRequest) input() (service.ClassInput, bool) {
	in := service.ClassInput{
		Name:        r.Name,
		Description: r.Description,
		Weekday:     r.Weekday,
		StartTime:   r.StartTime,
		Duration:    r.Duration,
		ImageURL:    r.ImageURL,
		Active:      r.Active == nil || *r.Active,
	}
	if raw := strings.TrimSpace(r.Capacity); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, false
		}
		in.Capacity = &n
	}
	id, ok := optionalObjectID(r.InstructorID)
	if !ok {
		return in, false
	}
	in.InstructorID = id
	return in, true
}

// optionalObjectID parses raw; an empty string yields nil.
func optionalObjectID(raw string) (*primitive.ObjectID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, ok := objectID(raw)
	if !ok {
		return nil, false
	}
	return &id, true
}

func (h *ClassHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	classes, err := h.classService.List(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	instructors, err := h.instructorService.ListActive(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "clases-admin", gin.H{"clases": classes, "instructores": instructors})
}

func (h *ClassHandler) NewForm(c *gin.Context) {
	instructors, err := h.instructorService.ListActive(c.Request.Context())
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "clase-form", gin.H{"clase": nil, "instructores": instructors})
}

func (h *ClassHandler) EditForm(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, classesPath, session.FlashError, service.ErrClassNotFound.Message)
		return
	}
	ctx := c.Request.Context()
	class, err := h.classService.Get(ctx, id)
	if err != nil {
		h.sessions.redirect(c, classesPath, session.FlashError, service.Message(err))
		return
	}
	instructors, err := h.instructorService.ListActive(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "clase-form", gin.H{"clase": class, "instructores": instructors})
}

func (h *ClassHandler) Create(c *gin.Context) {
	var req ClassRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, classesPath+"/nueva", session.FlashError, "Datos de la clase inválidos")
		return
	}
	in, ok := req.input()
	if !ok {
		h.sessions.redirect(c, classesPath+"/nueva", session.FlashError, "Datos de la clase inválidos")
		return
	}
	_, err := h.classService.Create(c.Request.Context(), in)
	h.sessions.redirectResult(c, classesPath, err, "Clase creada exitosamente")
}

func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, classesPath, session.FlashError, service.ErrClassNotFound.Message)
		return
	}
	var req ClassRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, classesPath, session.FlashError, "Datos de la clase inválidos")
		return
	}
	in, ok := req.input()
	if !ok {
		h.sessions.redirect(c, classesPath, session.FlashError, "Datos de la clase inválidos")
		return
	}
	_, err := h.classService.Update(c.Request.Context(), id, in)
	h.sessions.redirectResult(c, classesPath, err, "Clase actualizada exitosamente")
}

// ToggleActive flips the class's active flag (AJAX).
func (h *ClassHandler) ToggleActive(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		jsonResult(c, service.ErrClassNotFound, "")
		return
	}
	class, err := h.classService.ToggleActive(c.Request.Context(), id)
	if err != nil {
		jsonResult(c, err, "")
		return
	}
	msg := "Clase desactivada"
	if class.Active {
		msg = "Clase activada"
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": msg, "activa": class.Active})
}

// AssignInstructor sets or clears the class instructor (AJAX).
func (h *ClassHandler) AssignInstructor(c *gin.Context) {
	var req AssignInstructorRequest
	if err := c.ShouldBind(&req); err != nil {
		jsonResult(c, service.ErrClassNotFound, "")
		return
	}
	classID, ok := objectID(req.ClassID)
	if !ok {
		jsonResult(c, service.ErrClassNotFound, "")
		return
	}
	instructorID, ok := optionalObjectID(req.InstructorID)
	if !ok {
		jsonResult(c, service.ErrInstructorNotFound, "")
		return
	}
	_, err := h.classService.AssignInstructor(c.Request.Context(), classID, instructorID)
	jsonResult(c, err, "Instructor asignado correctamente")
}

// RequestImageUpload hands out a presigned URL for the class image (AJAX).
func (h *ClassHandler) RequestImageUpload(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		jsonResult(c, service.ErrClassNotFound, "")
		return
	}
	var req ImageUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Tipo de archivo requerido")
		return
	}
	upload, err := h.classService.PrepareImageUpload(c.Request.Context(), id, req.ContentType)
	if err != nil {
		jsonResult(c, err, "")
		return
	}
	c.JSON(http.StatusOK, upload)
}
