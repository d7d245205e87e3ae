package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerfarooq187/hostel-management/handlers"
	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/routes"
	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store/memory"
)

const testSecret = "test-secret"

type apiFixture struct {
	e   *echo.Echo
	mem *memory.Memory
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	mem := memory.New()
	clock := func() time.Time {
		return time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	}
	log := zerolog.Nop()

	e := echo.New()
	e.Validator = handlers.NewValidator()
	routes.RegisterRoutes(e, routes.Deps{
		Store:      mem,
		Allocation: services.NewAllocationService(mem, clock, log),
		Billing:    services.NewBillingService(mem, clock, log),
		Receipt:    services.NewReceiptService("Test Hostel", clock),
		Mailer:     services.NopMailer{},
		JWTSecret:  testSecret,
	})
	return &apiFixture{e: e, mem: mem}
}

func (f *apiFixture) token(t *testing.T, sub uint, email, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.e.ServeHTTP(w, req)
	return w
}

// seedStudent creates a user+student pair directly in the store.
func (f *apiFixture) seedStudent(t *testing.T, email string, hostelID uint) uint {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Name: "Student", Email: email, Role: models.RoleStudent, Active: true}
	require.NoError(t, f.mem.Users().Create(ctx, user))
	student := &models.Student{UserID: user.ID, HostelID: hostelID}
	require.NoError(t, f.mem.Students().Create(ctx, student))
	return student.ID
}

func TestAuthRequired(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodGet, "/api/admin/hostels", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A valid student token cannot reach admin routes.
	studentTok := f.token(t, 1, "s@example.com", models.RoleStudent)
	w = f.request(t, http.MethodGet, "/api/admin/hostels", studentTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignupAndLogin(t *testing.T) {
	f := newAPIFixture(t)

	w := f.request(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Ali Khan",
		"email":    "Ali.Khan@Example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Email is stored lowercased, so login with lowercase works.
	w = f.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "ali.khan@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)

	t.Run("duplicate email", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
			"name":     "Ali Again",
			"email":    "ali.khan@example.com",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := f.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "ali.khan@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAllocationEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	admin := f.token(t, 1, "admin@example.com", models.RoleAdmin)

	hostel := &models.Hostel{Name: "Main Block", Active: true}
	require.NoError(t, f.mem.Hostels().Create(ctx, hostel))
	room := &models.Room{HostelID: hostel.ID, Block: "A", RoomNumber: "101", Capacity: 2}
	require.NoError(t, f.mem.Rooms().Create(ctx, room))
	studentID := f.seedStudent(t, "s1@example.com", hostel.ID)

	w := f.request(t, http.MethodPost,
		"/api/admin/allocations/student/1000/room/1000/bed/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	path := func(bed string) string {
		return "/api/admin/allocations/student/" +
			uintStr(studentID) + "/room/" + uintStr(room.ID) + "/bed/" + bed
	}

	w = f.request(t, http.MethodPost, path("1"), admin, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var alloc models.Allocation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alloc))
	assert.Equal(t, 1, alloc.BedNumber)

	t.Run("second allocation conflicts", func(t *testing.T) {
		w := f.request(t, http.MethodPost, path("2"), admin, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("bed map", func(t *testing.T) {
		w := f.request(t, http.MethodGet, "/api/admin/rooms/"+uintStr(room.ID)+"/beds", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var beds []services.BedStatus
		require.NoError(t, json.NewDecoder(w.Body).Decode(&beds))
		require.Len(t, beds, 2)
		assert.True(t, beds[0].Occupied)
		assert.False(t, beds[1].Occupied)
	})

	t.Run("current allocation null when none", func(t *testing.T) {
		otherID := f.seedStudent(t, "s2@example.com", hostel.ID)
		w := f.request(t, http.MethodGet,
			"/api/admin/allocations/student/"+uintStr(otherID)+"/current", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "null\n", w.Body.String())
	})
}

func TestStudentSelfService(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	hostel := &models.Hostel{Name: "Main Block", Active: true}
	require.NoError(t, f.mem.Hostels().Create(ctx, hostel))
	f.seedStudent(t, "me@example.com", hostel.ID)

	tok := f.token(t, 1, "me@example.com", models.RoleStudent)

	w := f.request(t, http.MethodGet, "/api/student/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&profile))
	assert.Equal(t, "me@example.com", profile.Email)

	t.Run("no room yet", func(t *testing.T) {
		w := f.request(t, http.MethodGet, "/api/student/me/room", tok, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("admin routes stay closed", func(t *testing.T) {
		w := f.request(t, http.MethodGet, "/api/admin/fees/overdue", tok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func uintStr(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
