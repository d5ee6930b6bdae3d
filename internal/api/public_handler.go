package api

import (
	"alcyxob/gym-manager/internal/content"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/session"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	dateLayout     = "2006-01-02"
	invalidRegData = "Error: Formato de fecha inválido o datos incorrectos"
)

// PublicHandler serves the pages reachable without logging in.
type PublicHandler struct {
	planService   service.PlanService
	memberService service.MemberService
	pages         *content.Pages
	sessions      *Sessions
}

func NewPublicHandler(planService service.PlanService, memberService service.MemberService, pages *content.Pages, sessions *Sessions) *PublicHandler {
	return &PublicHandler{
		planService:   planService,
		memberService: memberService,
		pages:         pages,
		sessions:      sessions,
	}
}

type RegisterRequest struct {
	Name      string `form:"nombre" json:"nombre"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
	DNI       string `form:"dni" json:"dni"`
	Phone     string `form:"telefono" json:"telefono"`
	BirthDate string `form:"fechaNacimiento" json:"fechaNacimiento"`
	Plan      string `form:"plan" json:"plan"`
}

// featuredPlans picks the Basico and Premium plans out of the active catalog.
func (h *PublicHandler) featuredPlans(c *gin.Context) (gin.H, error) {
	plans, err := h.planService.ListActive(c.Request.Context())
	if err != nil {
		return nil, err
	}
	data := gin.H{"planes": plans, "planBasico": nil, "planPremium": nil}
	for i := range plans {
		switch {
		case plans[i].IsBasic():
			data["planBasico"] = plans[i]
		case plans[i].IsPremium():
			data["planPremium"] = plans[i]
		}
	}
	return data, nil
}

func (h *PublicHandler) Home(c *gin.Context) {
	data, err := h.featuredPlans(c)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "home", data)
}

func (h *PublicHandler) RegisterPage(c *gin.Context) {
	data, err := h.featuredPlans(c)
	if err != nil {
		abortWithError(c, statusFor(service.KindOf(err)), service.Message(err))
		return
	}
	h.sessions.render(c, "registro", data)
}

// Register creates the member account and sends them to the login panel.
func (h *PublicHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sessions.redirect(c, "/registro", session.FlashError, invalidRegData)
		return
	}

	in := service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		DNI:      req.DNI,
		Phone:    req.Phone,
		PlanName: req.Plan,
	}
	if raw := strings.TrimSpace(req.BirthDate); raw != "" {
		birth, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.sessions.redirect(c, "/registro", session.FlashError, invalidRegData)
			return
		}
		birth = domain.CivilDate(birth)
		in.BirthDate = &birth
	}

	reg, err := h.memberService.Register(c.Request.Context(), in)
	if err != nil {
		h.sessions.redirect(c, "/registro", session.FlashError, service.Message(err))
		return
	}
	h.sessions.redirect(c, "/login", session.FlashSuccess, reg.Message())
}

func (h *PublicHandler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := h.pages.Get(name)
		if err != nil {
			log.Error().Err(err).Str("page", name).Msg("failed to render page")
			abortWithError(c, http.StatusInternalServerError, service.ErrInternal.Message)
			return
		}
		h.sessions.render(c, name, gin.H{"contenido": page.HTML})
	}
}

func (h *PublicHandler) FAQ(c *gin.Context) {
	h.page("faq")(c)
}

func (h *PublicHandler) About(c *gin.Context) {
	h.page("nosotros")(c)
}
