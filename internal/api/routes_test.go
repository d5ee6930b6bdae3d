package api

import (
	"alcyxob/gym-manager/internal/service"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole_Redirects(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name     string
		path     string
		location string
	}{
		{"admin page", "/admin/dashboard", "/admin/login"},
		{"admin members", "/admin/miembros", "/admin/login"},
		{"member page", "/miembro/perfil", "/miembro/login"},
		{"member routines", "/miembro/rutinas", "/miembro/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.browser(t).get(tt.path)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestRequireRole_AJAXGetsUnauthorized(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	rec := b.postAJAX("/admin/asistencias/entrada/"+missingHex, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, sessionExpired, body["message"])

	// JSON routes answer 401 even without the AJAX headers.
	rec = b.get("/admin/asistencias/estado/" + missingHex)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMemberCannotOpenAdminPages(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("Ana Torres", "40000001", "PLAN BÁSICO")
	b.loginMember("40000001")

	rec := b.get("/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestRegisterFlow(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	home := decode(t, b.get("/"))
	assert.Equal(t, "home", home["view"])
	require.NotNil(t, home["planBasico"])
	require.NotNil(t, home["planPremium"])

	b.register("Ana Torres", "40000001", "PLAN BÁSICO")

	page := decode(t, b.get("/login"))
	assert.Equal(t, "login", page["view"])
	assert.Contains(t, page["mensaje"], "Registro exitoso. Plan: Basico")
	assert.Equal(t, "success", page["tipoMensaje"])

	// The flash is shown once.
	page = decode(t, b.get("/login"))
	assert.NotContains(t, page, "mensaje")

	member, err := app.repos.Members.GetByDNI(context.Background(), "40000001")
	require.NoError(t, err)
	assert.True(t, member.Active)
	assert.NotEqual(t, "clave-40000001", member.PasswordHash)
}

func TestRegisterRejections(t *testing.T) {
	app := newTestApp(t)
	seed := app.browser(t)
	seed.register("Ana Torres", "40000001", "PLAN PREMIUM")

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name: "bad birth date",
			form: url.Values{
				"nombre": {"Beto"}, "email": {"beto@gym.test"}, "password": {"x"},
				"dni": {"40000002"}, "fechaNacimiento": {"20/05/1990"}, "plan": {"PLAN BÁSICO"},
			},
			message: invalidRegData,
		},
		{
			name: "duplicate dni",
			form: url.Values{
				"nombre": {"Beto"}, "email": {"beto@gym.test"}, "password": {"x"},
				"dni": {"40000001"}, "plan": {"PLAN BÁSICO"},
			},
			message: service.ErrDNITaken.Message,
		},
		{
			name: "duplicate email",
			form: url.Values{
				"nombre": {"Beto"}, "email": {"40000001@gym.test"}, "password": {"x"},
				"dni": {"40000003"}, "plan": {"PLAN BÁSICO"},
			},
			message: service.ErrEmailTaken.Message,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := app.browser(t)
			rec := b.postForm("/registro", tt.form)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/registro", rec.Header().Get("Location"))

			page := decode(t, b.get("/registro"))
			assert.Equal(t, "registro", page["view"])
			assert.Equal(t, tt.message, page["mensaje"])
			assert.Equal(t, "error", page["tipoMensaje"])
		})
	}
}

func TestAdminLogin(t *testing.T) {
	app := newTestApp(t)

	t.Run("wrong password", func(t *testing.T) {
		b := app.browser(t)
		rec := b.postForm("/admin/login", url.Values{"usuario": {testAdminUser}, "password": {"nope"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

		page := decode(t, b.get("/admin/login"))
		assert.Equal(t, service.ErrInvalidAdminCredentials.Message, page["mensaje"])
	})

	t.Run("login rotates the session cookie", func(t *testing.T) {
		b := app.browser(t)
		b.postForm("/admin/login", url.Values{"usuario": {testAdminUser}, "password": {"nope"}})
		require.NotNil(t, b.cookie, "the failed login stored a flash")
		anonymous := b.cookie

		b.loginAdmin()
		require.NotNil(t, b.cookie)
		assert.NotEqual(t, anonymous.Value, b.cookie.Value)

		stale := app.browser(t)
		stale.cookie = anonymous
		rec := stale.get("/admin/dashboard")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	})

	t.Run("dashboard and logout", func(t *testing.T) {
		b := app.browser(t)
		b.loginAdmin()

		page := decode(t, b.get("/admin/dashboard"))
		assert.Equal(t, "dashboard-admin", page["view"])
		assert.Contains(t, page, "metricas")

		rec := b.get("/admin/logout")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

		rec = b.get("/admin/dashboard")
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	})
}

func TestAttendanceEndpoints(t *testing.T) {
	app := newTestApp(t)
	app.browser(t).register("Ana Torres", "40000001", "PLAN BÁSICO")
	member, err := app.repos.Members.GetByDNI(context.Background(), "40000001")
	require.NoError(t, err)
	id := member.ID.Hex()

	admin := app.browser(t)
	admin.loginAdmin()

	rec := admin.postAJAX("/admin/asistencias/entrada/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Contains(t, body["message"], "Entrada registrada a las ")

	rec = admin.postAJAX("/admin/asistencias/entrada/"+id, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, service.ErrAlreadyCheckedIn.Message, decode(t, rec)["message"])

	status := decode(t, admin.get("/admin/asistencias/estado/"+id))
	assert.Equal(t, true, status["enGimnasio"])
	assert.EqualValues(t, 1, status["asistenciasMes"])

	rec = admin.postAJAX("/admin/asistencias/salida/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Salida registrada. Duración: 0 minutos", decode(t, rec)["message"])

	rec = admin.postAJAX("/admin/asistencias/salida/"+id, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = admin.postAJAX("/admin/asistencias/entrada/"+missingHex, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	page := decode(t, admin.get("/admin/asistencias"))
	assert.Equal(t, "asistencias-admin", page["view"])
	assert.EqualValues(t, 1, page["totalHoy"])
}

func TestMemberReservations(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	yoga, err := app.services.Class.Create(ctx, service.ClassInput{
		Name: "Yoga", Weekday: "Lunes", StartTime: "08:00", Duration: 60, Active: true,
	})
	require.NoError(t, err)

	basic := app.browser(t)
	basic.register("Ana Torres", "40000001", "PLAN BÁSICO")
	basic.loginMember("40000001")

	rec := basic.postForm("/miembro/clases/reservar", url.Values{"claseId": {yoga.ID.Hex()}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page := decode(t, basic.get("/miembro/clases"))
	assert.Equal(t, service.ErrPremiumRequired.Message, page["mensaje"])
	assert.Equal(t, false, page["puedeReservar"])

	premium := app.browser(t)
	premium.register("Beto Ruiz", "40000002", "PLAN PREMIUM")
	premium.loginMember("40000002")

	premium.postForm("/miembro/clases/reservar", url.Values{"claseId": {yoga.ID.Hex()}})
	page = decode(t, premium.get("/miembro/clases"))
	assert.Equal(t, "Reserva realizada exitosamente", page["mensaje"])
	reservations, ok := page["reservas"].([]any)
	require.True(t, ok)
	require.Len(t, reservations, 1)

	reservationID := reservations[0].(map[string]any)["id"].(string)
	premium.postForm("/miembro/clases/cancelar", url.Values{"reservaId": {reservationID}})
	page = decode(t, premium.get("/miembro/clases"))
	assert.Equal(t, "Reserva cancelada exitosamente", page["mensaje"])
	assert.Empty(t, page["reservas"])
}

func TestMemberRoutineFlow(t *testing.T) {
	app := newTestApp(t)

	admin := app.browser(t)
	admin.loginAdmin()
	rec := admin.postForm("/admin/rutinas/crear", url.Values{
		"nombre": {"Quema total"}, "objetivo": {"Bajar Peso"}, "nivel": {"Principiante"},
		"duracionMinutos": {"45"}, "frecuenciaSemanal": {"3"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Rutina creada exitosamente", decode(t, admin.get("/admin/rutinas"))["mensaje"])

	b := app.browser(t)
	b.register("Ana Torres", "40000001", "PLAN BÁSICO")
	b.loginMember("40000001")

	rec = b.get("/miembro/rutinas")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, memberObjectivePath, rec.Header().Get("Location"))

	rec = b.get("/miembro/rutinas/seleccionar-nivel?objetivo=Volar")
	assert.Equal(t, memberObjectivePath, rec.Header().Get("Location"))

	level := decode(t, b.get("/miembro/rutinas/seleccionar-nivel?objetivo=Bajar%20Peso"))
	assert.Equal(t, "seleccionar-nivel", level["view"])

	rec = b.postForm("/miembro/rutinas/asignar", url.Values{"objetivo": {"Bajar Peso"}, "nivel": {"Principiante"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, memberRoutinesPath, rec.Header().Get("Location"))

	page := decode(t, b.get("/miembro/rutinas"))
	assert.Equal(t, "rutinas", page["view"])
	assert.Equal(t, "Rutina asignada exitosamente", page["mensaje"])

	b.postForm("/miembro/rutinas/sesion", url.Values{"notas": {"piernas"}})
	page = decode(t, b.get("/miembro/rutinas"))
	assert.Equal(t, "Sesión registrada exitosamente", page["mensaje"])
	progress := page["progreso"].(map[string]any)
	assert.EqualValues(t, 1, progress["sesionesEsteMes"])
	assert.EqualValues(t, 12, progress["metaMensual"])

	rec = b.postForm("/miembro/rutinas/cancelar", nil)
	assert.Equal(t, memberObjectivePath, rec.Header().Get("Location"))
	page = decode(t, b.get(memberObjectivePath))
	assert.Equal(t, "Rutina cancelada. Ahora puedes seleccionar una nueva.", page["mensaje"])
}

func TestMemberProfile(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("Ana Torres", "40000001", "PLAN BÁSICO")
	b.loginMember("40000001")

	page := decode(t, b.get("/miembro/perfil"))
	assert.Equal(t, "perfil", page["view"])
	assert.EqualValues(t, time.Now().UTC().Year()-1990, page["edad"])

	rec := b.postForm("/miembro/perfil", url.Values{"nombre": {"Ana T."}, "email": {"ana@gym.test"}, "telefono": {"1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page = decode(t, b.get("/miembro/perfil"))
	assert.Equal(t, "Datos actualizados", page["mensaje"])
	assert.Equal(t, "Ana T.", page["miembro"].(map[string]any)["nombre"])
}

func TestAdminPlans(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.loginAdmin()

	rec := b.postForm("/admin/planes/guardar", url.Values{
		"nombre": {"Estudiante"}, "precio": {"50"}, "activo": {"true"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page := decode(t, b.get("/admin/planes"))
	assert.Equal(t, "Plan guardado exitosamente", page["mensaje"])
	assert.Len(t, page["planes"], 3)

	rec = b.get("/admin/planes/editar/" + missingHex)
	assert.Equal(t, plansPath, rec.Header().Get("Location"))
	page = decode(t, b.get("/admin/planes"))
	assert.Equal(t, service.ErrPlanNotFound.Message, page["mensaje"])
}

func TestClassToggleIsJSON(t *testing.T) {
	app := newTestApp(t)
	class, err := app.services.Class.Create(context.Background(), service.ClassInput{
		Name: "Spinning", Weekday: "Martes", StartTime: "19:00", Duration: 45, Active: true,
	})
	require.NoError(t, err)

	b := app.browser(t)
	b.loginAdmin()

	rec := b.postAJAX("/admin/clases/cambiar-estado/"+class.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Clase desactivada", decode(t, rec)["message"])

	rec = b.postAJAX("/admin/clases/cambiar-estado/"+class.ID.Hex(), nil)
	assert.Equal(t, "Clase activada", decode(t, rec)["message"])

	// Without object storage the upload endpoint reports it as unavailable.
	rec = b.postAJAX("/admin/clases/"+class.ID.Hex()+"/imagen", url.Values{"contentType": {"image/png"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrUploadUnavailable.Message, decode(t, rec)["message"])
}

func TestPublicContentPages(t *testing.T) {
	app := newTestApp(t)
	for _, view := range []string{"faq", "nosotros"} {
		page := decode(t, app.browser(t).get("/"+view))
		assert.Equal(t, view, page["view"])
		assert.NotEmpty(t, page["contenido"])
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	app.checks["mongo"] = func(context.Context) error { return nil }

	rec := app.browser(t).get("/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	app.checks["redis"] = func(context.Context) error { return errors.New("connection refused") }
	rec = app.browser(t).get("/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "DOWN", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "UP", checks["mongo"].(map[string]any)["status"])
	assert.Equal(t, "DOWN", checks["redis"].(map[string]any)["status"])

	assert.Equal(t, http.StatusOK, app.browser(t).get("/health").Code)
}

func TestCSRFProtectsForms(t *testing.T) {
	app := newTestApp(t, withCSRF([]byte("0123456789abcdef0123456789abcdef")))
	b := app.browser(t)

	page := decode(t, b.get("/registro"))
	assert.NotEmpty(t, page["csrfToken"])

	form := url.Values{"usuario": {testAdminUser}, "password": {testAdminPassword}}
	rec := b.postForm("/admin/login", form)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec = b.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "an Accept header does not skip the token")

	rec = b.postForm("/admin/asistencias/entrada/"+missingHex, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "JSON endpoints need a token without the XHR header")

	rec = b.postAJAX("/admin/asistencias/entrada/"+missingHex, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "the XHR header passes the CSRF check")
}

var missingHex = "0123456789abcdef01234567"
