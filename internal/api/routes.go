package api

import (
	"alcyxob/gym-manager/internal/content"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services groups the application services the handlers call.
type Services struct {
	Auth       service.AuthService
	Member     service.MemberService
	Plan       service.PlanService
	Instructor service.InstructorService
	Class      service.ClassService
	Attendance service.AttendanceService
	Routine    service.RoutineService
	Progress   service.ProgressService
	Dashboard  service.DashboardService
}

// RouterConfig carries everything SetupRoutes wires together.
type RouterConfig struct {
	Services Services
	Sessions *Sessions
	Pages    *content.Pages
	Clock    service.Clock
	// CSRFKey enables CSRF protection on state-changing routes when set (32 bytes).
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	HealthChecks   map[string]Pinger
	Metrics        http.Handler
}

const (
	adminLoginPath  = "/admin/login"
	memberLoginPath = "/miembro/login"
)

func SetupRoutes(router *gin.Engine, cfg RouterConfig) {
	svc := cfg.Services
	sessions := cfg.Sessions

	authHandler := NewAuthHandler(svc.Auth, sessions)
	publicHandler := NewPublicHandler(svc.Plan, svc.Member, cfg.Pages, sessions)
	adminHandler := NewAdminHandler(svc.Dashboard, svc.Member, svc.Plan, sessions)
	classHandler := NewClassHandler(svc.Class, svc.Instructor, sessions)
	instructorHandler := NewInstructorHandler(svc.Instructor, svc.Class, sessions)
	attendanceHandler := NewAttendanceHandler(svc.Attendance, sessions)
	progressHandler := NewProgressHandler(svc.Progress, svc.Routine, sessions)
	memberHandler := NewMemberHandler(svc.Member, svc.Class, svc.Routine, svc.Attendance, cfg.Clock, sessions)
	healthHandler := NewHealthHandler(cfg.HealthChecks)

	router.Use(RequestID(), RequestLogger(), Instrument())

	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	withSession := router.Group("", sessions.Middleware())

	var csrfMiddleware []gin.HandlerFunc
	if len(cfg.CSRFKey) > 0 {
		csrfMiddleware = append(csrfMiddleware, CSRF(cfg.CSRFKey, cfg.SecureCookies, cfg.TrustedOrigins))
	}

	// Form pages and posts.
	pages := withSession.Group("", csrfMiddleware...)
	{
		pages.GET("/", publicHandler.Home)
		pages.GET("/registro", publicHandler.RegisterPage)
		pages.POST("/registro", publicHandler.Register)
		pages.GET("/faq", publicHandler.FAQ)
		pages.GET("/nosotros", publicHandler.About)

		pages.GET("/login", authHandler.LoginPanel)
		pages.GET("/logout", authHandler.Logout)
		pages.GET(memberLoginPath, authHandler.MemberLoginPage)
		pages.POST(memberLoginPath, authHandler.MemberLogin)
		pages.GET(adminLoginPath, authHandler.AdminLoginPage)
		pages.POST(adminLoginPath, authHandler.AdminLogin)
		pages.GET("/admin/logout", authHandler.AdminLogout)
	}

	admin := pages.Group("/admin", RequireRole(domain.RoleAdmin, adminLoginPath))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/reporte", adminHandler.Report)

		admin.GET("/miembros", adminHandler.Members)
		admin.POST("/miembros/cambiar-estado", adminHandler.ChangeMemberStatus)
		admin.POST("/miembros/renovar", adminHandler.RenewMembership)
		admin.POST("/miembros/cambiar-plan", adminHandler.ChangeMemberPlan)

		admin.GET("/planes", adminHandler.Plans)
		admin.GET("/planes/nuevo", adminHandler.NewPlanForm)
		admin.POST("/planes/guardar", adminHandler.SavePlan)
		admin.GET("/planes/editar/:id", adminHandler.EditPlanForm)
		admin.POST("/planes/eliminar/:id", adminHandler.DeletePlan)
		admin.POST("/planes/cambiar-estado", adminHandler.ChangePlanStatus)

		admin.GET("/clases", classHandler.List)
		admin.GET("/clases/nueva", classHandler.NewForm)
		admin.POST("/clases/crear", classHandler.Create)
		admin.GET("/clases/editar/:id", classHandler.EditForm)
		admin.POST("/clases/actualizar/:id", classHandler.Update)

		admin.GET("/instructores", instructorHandler.List)
		admin.POST("/instructores/crear", instructorHandler.Create)
		admin.POST("/instructores/actualizar/:id", instructorHandler.Update)
		admin.POST("/instructores/eliminar/:id", instructorHandler.Delete)
		admin.POST("/instructores/cambiar-estado/:id", instructorHandler.ToggleActive)

		admin.GET("/asistencias", attendanceHandler.Index)
		admin.GET("/asistencias/historial/:miembroId", attendanceHandler.History)

		admin.GET("/progreso", progressHandler.Overview)
		admin.GET("/progreso/detalle/:miembroId", progressHandler.Detail)

		admin.GET("/rutinas", progressHandler.Routines)
		admin.POST("/rutinas/crear", progressHandler.CreateRoutine)
		admin.POST("/rutinas/:id/ejercicios", progressHandler.AddExercise)
	}

	// AJAX endpoints answer JSON. Without the XHR header they need a CSRF token.
	adminJSON := withSession.Group("/admin", JSONEndpoint())
	adminJSON.Use(csrfMiddleware...)
	adminJSON.Use(RequireRole(domain.RoleAdmin, adminLoginPath))
	{
		adminJSON.POST("/clases/cambiar-estado/:id", classHandler.ToggleActive)
		adminJSON.POST("/clases/asignar-instructor", classHandler.AssignInstructor)
		adminJSON.POST("/clases/:id/imagen", classHandler.RequestImageUpload)

		adminJSON.POST("/asistencias/entrada/:miembroId", attendanceHandler.CheckIn)
		adminJSON.POST("/asistencias/salida/:miembroId", attendanceHandler.CheckOut)
		adminJSON.GET("/asistencias/estado/:miembroId", attendanceHandler.Status)

		adminJSON.POST("/progreso/marcar-sesion/:miembroId", progressHandler.MarkSession)
		adminJSON.POST("/progreso/eliminar-sesion/:sesionId", progressHandler.DeleteSession)
		adminJSON.GET("/progreso/estadisticas", progressHandler.Stats)
	}

	member := pages.Group("/miembro", RequireRole(domain.RoleMember, memberLoginPath))
	{
		member.GET("/dashboard", memberHandler.Dashboard)
		member.GET("/perfil", memberHandler.Profile)
		member.POST("/perfil", memberHandler.UpdateProfile)

		member.GET("/clases", memberHandler.Classes)
		member.POST("/clases/reservar", memberHandler.Reserve)
		member.POST("/clases/cancelar", memberHandler.CancelReservation)

		member.GET("/rutinas", memberHandler.Routines)
		member.GET("/rutinas/seleccionar-objetivo", memberHandler.SelectObjective)
		member.GET("/rutinas/seleccionar-nivel", memberHandler.SelectLevel)
		member.POST("/rutinas/asignar", memberHandler.AssignRoutine)
		member.POST("/rutinas/cancelar", memberHandler.CancelRoutine)
		member.POST("/rutinas/sesion", memberHandler.LogSession)

		member.GET("/progreso", memberHandler.Progress)
	}
}
