package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrator dashboard, members and plans.
type AdminHandler struct {
	dashboardService service.DashboardService
	memberService    service.MemberService
	planService      service.PlanService
	sessions         *Sessions
}

func NewAdminHandler(
	dashboardService service.DashboardService,
	memberService service.MemberService,
	planService service.PlanService,
	sessions *Sessions,
) *AdminHandler {
	return &AdminHandler{
		dashboardService: dashboardService,
		memberService:    memberService,
		planService:      planService,
		sessions:         sessions,
	}
}

type MemberStatusRequest struct {
	MemberID string `form:"miembroId" json:"miembroId" binding:"required"`
	Active   bool   `form:"activo" json:"activo"`
}

type RenewRequest struct {
	MemberID string `form:"miembroId" json:"miembroId" binding:"required"`
	Months   int    `form:"meses" json:"meses"`
}

type ChangePlanRequest struct {
	MemberID string `form:"miembroId" json:"miembroId" binding:"required"`
	PlanID   string `form:"planId" json:"planId" binding:"required"`
}

type PlanRequest struct {
	ID               string  `form:"id" json:"id"`
	Name             string  `form:"nombre" json:"nombre"`
	Price            float64 `form:"precio" json:"precio"`
	Description      string  `form:"descripcion" json:"descripcion"`
	ClassAccess      bool    `form:"accesoClases" json:"accesoClases"`
	PersonalTraining bool    `form:"entrenadorPersonal" json:"entrenadorPersonal"`
	Active           bool    `form:"activo" json:"activo"`
}

type PlanStatusRequest struct {
	PlanID string `form:"planId" json:"planId" binding:"required"`
	Active bool   `form:"activo" json:"activo"`
}

const (
	membersPath = "/admin/miembros"
	plansPath   = "/admin/planes"
)

func (h *AdminHandler) Dashboard(c *gin.Context) {
	metrics, err := h.dashboardService.Metrics(c.Request.Context())
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	p := principal(c)
	h.sessions.render(c, "dashboard-admin", gin.H{
		"administrador": p,
		"metricas":      metrics,
	})
}

// Report returns the monthly report as JSON.
func (h *AdminHandler) Report(c *gin.Context) {
	report, err := h.dashboardService.MonthlyReport(c.Request.Context())
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) Members(c *gin.Context) {
	ctx := c.Request.Context()
	members, err := h.memberService.List(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	plans, err := h.planService.ListActive(ctx)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "miembros-admin", gin.H{"miembros": members, "planes": plans})
}

func (h *AdminHandler) ChangeMemberStatus(c *gin.Context) {
	var req MemberStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, membersPath, session.FlashError, service.ErrMemberNotFound.Message)
		return
	}
	id, ok := objectID(req.MemberID)
	if !ok {
		h.sessions.redirect(c, membersPath, session.FlashError, service.ErrMemberNotFound.Message)
		return
	}
	_, err := h.memberService.SetActive(c.Request.Context(), id, req.Active)
	h.sessions.redirectResult(c, membersPath, err, "Estado del miembro actualizado exitosamente")
}

func (h *AdminHandler) RenewMembership(c *gin.Context) {
	var req RenewRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, membersPath, session.FlashError, service.ErrMemberNotFound.Message)
		return
	}
	id, ok := objectID(req.MemberID)
	if !ok {
		h.sessions.redirect(c, membersPath, session.FlashError, service.ErrMemberNotFound.Message)
		return
	}
	if req.Months == 0 {
		req.Months = 1
	}
	_, err := h.memberService.Renew(c.Request.Context(), id, req.Months)
	h.sessions.redirectResult(c, membersPath, err, fmt.Sprintf("Membresía renovada por %d mes(es)", req.Months))
}

func (h *AdminHandler) ChangeMemberPlan(c *gin.Context) {
	var req ChangePlanRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, membersPath, session.FlashError, service.ErrPlanNotFound.Message)
		return
	}
	memberID, ok := objectID(req.MemberID)
	if !ok {
		h.sessions.redirect(c, membersPath, session.FlashError, service.ErrMemberNotFound.Message)
		return
	}
	planID, ok := objectID(req.PlanID)
	if !ok {
		h.sessions.redirect(c, membersPath, session.FlashError, service.ErrPlanNotFound.Message)
		return
	}
	_, err := h.memberService.ChangePlan(c.Request.Context(), memberID, planID)
	h.sessions.redirectResult(c, membersPath, err, "Plan actualizado")
}

func (h *AdminHandler) Plans(c *gin.Context) {
	plans, err := h.planService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "planes-admin", gin.H{"planes": plans})
}

func (h *AdminHandler) NewPlanForm(c *gin.Context) {
	h.sessions.render(c, "plan-form", gin.H{"plan": domain.Plan{Active: true}})
}

func (h *AdminHandler) EditPlanForm(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, plansPath, session.FlashError, service.ErrPlanNotFound.Message)
		return
	}
	plan, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		h.sessions.redirect(c, plansPath, session.FlashError, service.Message(err))
		return
	}
	h.sessions.render(c, "plan-form", gin.H{"plan": plan})
}

// SavePlan creates the plan, or updates it when the form carries an id.
func (h *AdminHandler) SavePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, plansPath, session.FlashError, "Datos del plan inválidos")
		return
	}
	in := service.PlanInput{
		Name:             req.Name,
		Price:            req.Price,
		Description:      req.Description,
		ClassAccess:      req.ClassAccess,
		PersonalTraining: req.PersonalTraining,
		Active:           req.Active,
	}

	ctx := c.Request.Context()
	var err error
	if raw := strings.TrimSpace(req.ID); raw != "" {
		id, ok := objectID(raw)
		if !ok {
			h.sessions.redirect(c, plansPath, session.FlashError, service.ErrPlanNotFound.Message)
			return
		}
		_, err = h.planService.Update(ctx, id, in)
	} else {
		_, err = h.planService.Create(ctx, in)
	}
	h.sessions.redirectResult(c, plansPath, err, "Plan guardado exitosamente")
}

func (h *AdminHandler) DeletePlan(c *gin.Context) {
	id, ok := objectID(c.Param("id"))
	if !ok {
		h.sessions.redirect(c, plansPath, session.FlashError, service.ErrPlanNotFound.Message)
		return
	}
	err := h.planService.Deactivate(c.Request.Context(), id)
	h.sessions.redirectResult(c, plansPath, err, "Plan desactivado exitosamente")
}

func (h *AdminHandler) ChangePlanStatus(c *gin.Context) {
	var req PlanStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, plansPath, session.FlashError, service.ErrPlanNotFound.Message)
		return
	}
	id, ok := objectID(req.PlanID)
	if !ok {
		h.sessions.redirect(c, plansPath, session.FlashError, service.ErrPlanNotFound.Message)
		return
	}
	_, err := h.planService.SetActive(c.Request.Context(), id, req.Active)
	h.sessions.redirectResult(c, plansPath, err, "Estado del plan actualizado exitosamente")
}
