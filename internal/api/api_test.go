package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warden/internal/authz"
	"warden/internal/logs"
	"warden/internal/models"
	"warden/internal/repo"
	"warden/internal/token"
)

func init() {
	logs.Init(logs.Options{Level: "error"})
}

type testEnv struct {
	router *mux.Router
	db     *gorm.DB
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.User{},
		&models.Permission{},
		&models.Role{},
	))

	users := repo.NewUserStore(db)
	roles := repo.NewRoleStore(db)
	perms := repo.NewPermissionStore(db)
	stats := repo.NewStatsStore(db)
	tokens := token.NewService("api-test-secret", time.Hour)
	gate := authz.NewGate(tokens, users)
	h := New(users, roles, perms, stats, tokens)

	router := mux.NewRouter().StrictSlash(true)
	RegisterRoutes(router, h, gate)
	return &testEnv{router: router, db: db}
}

// seedRBAC installs the stock permissions, an all-powerful admin role,
// a read-only user role and an admin account.
func (e *testEnv) seedRBAC(t *testing.T) {
	t.Helper()
	var all []models.Permission
	for _, name := range []string{
		"READ_users", "EDIT_users", "DELETE_users", "CREATE_users",
		"READ_admins", "EDIT_admins", "DELETE_admins", "CREATE_admins",
	} {
		p := models.Permission{Name: name}
		require.NoError(t, e.db.Create(&p).Error)
		all = append(all, p)
	}
	adminRole := models.Role{Name: models.TypeAdmin, Permissions: all}
	require.NoError(t, e.db.Create(&adminRole).Error)
	userRole := models.Role{Name: models.TypeUser, Permissions: all[:1]} // READ_users only
	require.NoError(t, e.db.Create(&userRole).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := models.User{
		Email:    "admin@example.com",
		Name:     "Default Admin",
		Password: string(hash),
		Type:     models.TypeAdmin,
		Roles:    []models.Role{adminRole},
	}
	require.NoError(t, e.db.Create(&admin).Error)
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid email or password!", body["message"])
	assert.NotContains(t, rec.Body.String(), "token")
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password!", decodeBody(t, rec)["message"])
}

func TestLoginSuccess(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)

	tok := env.login(t, "admin@example.com", "admin123")
	assert.NotEmpty(t, tok)
}

func TestRegisterThenDuplicate(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)

	payload := map[string]string{
		"name": "Jane Roe", "email": "jane@x.com", "password": "pass1234",
	}
	rec := env.do(t, http.MethodPost, "/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "already exists")

	// first registration still works for login
	env.login(t, "jane@x.com", "pass1234")
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)

	for _, path := range []string{"/user/", "/role/", "/permission/", "/dashboard/stats"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRoleEndpointsForbiddenForPlainUser(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Plain User", "email": "plain@x.com", "password": "pass1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tok := env.login(t, "plain@x.com", "pass1234")

	rec = env.do(t, http.MethodGet, "/role/", tok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/permission/", tok, map[string]string{"name": "READ_owners"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUsersRowLevelFiltering(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)

	// plain user holds READ_users only
	rec := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Plain User", "email": "plain@x.com", "password": "pass1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tok := env.login(t, "plain@x.com", "pass1234")

	rec = env.do(t, http.MethodGet, "/user/?page=1&pageSize=10", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page repo.UserPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.NotEmpty(t, page.Users)
	for _, u := range page.Users {
		assert.Equal(t, models.TypeUser, u.Type) // the seeded admin is invisible
	}
}

func TestDeletePermissionReportsAffectedRoles(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)
	tok := env.login(t, "admin@example.com", "admin123")

	var p models.Permission
	require.NoError(t, env.db.Where("name = ?", "EDIT_users").First(&p).Error)

	rec := env.do(t, http.MethodDelete, "/permission/"+p.ID.String(), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	affected, ok := body["affectedRoles"].([]any)
	require.True(t, ok)
	assert.Len(t, affected, 1) // admin role held it
}

func TestDeleteRoleInUseThroughAPI(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)
	tok := env.login(t, "admin@example.com", "admin123")

	var adminRole models.Role
	require.NoError(t, env.db.Where("name = ?", models.TypeAdmin).First(&adminRole).Error)

	rec := env.do(t, http.MethodDelete, "/role/"+adminRole.ID.String(), tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "Cannot delete role")
}

func TestUpdateOwnProfile(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)
	tok := env.login(t, "admin@example.com", "admin123")

	rec := env.do(t, http.MethodPut, "/user/profile", tok, map[string]string{
		"name": "Renamed Admin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Profile updated successfully!", decodeBody(t, rec)["message"])

	var u models.User
	require.NoError(t, env.db.Where("email = ?", "admin@example.com").First(&u).Error)
	assert.Equal(t, "Renamed Admin", u.Name)
}

func TestDashboardStats(t *testing.T) {
	env := setupAPI(t)
	env.seedRBAC(t)
	tok := env.login(t, "admin@example.com", "admin123")

	rec := env.do(t, http.MethodGet, "/dashboard/stats", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats repo.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.Stats.Users.Total)
	assert.EqualValues(t, 8, stats.Stats.Permissions.Total)
	assert.EqualValues(t, 2, stats.Stats.Roles.Total)
	require.NotEmpty(t, stats.RecentActivities)
	assert.Equal(t, "user_registered", stats.RecentActivities[0].Type)
}
