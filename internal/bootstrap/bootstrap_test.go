package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/repositories/inmem"
	"github.com/yigit/unicampus/internal/config"
)

const adminPassword = "admin-password"

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		TotalItems int64 `json:"totalItems"`
	} `json:"pagination"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.JWT.Secret = "e2e-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "unicampus.test"
	cfg.Seed.Catalog = true
	cfg.Seed.AdminEmail = "admin@uni.edu"
	cfg.Seed.AdminPassword = adminPassword

	deps := BuildDependencies(cfg, inmem.NewRepositories(inmem.NewDB()), nil, zerolog.Nop())
	SeedDefaults(context.Background(), cfg, deps)
	return &api{t: t, router: SetupRouter(cfg, deps, zerolog.Nop())}
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a *api) data(env envelope, out interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(env.Data, out))
}

func (a *api) login(email, password string) (string, string) {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, status)
	var resp struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
		Account struct {
			ID string `json:"id"`
		} `json:"account"`
	}
	a.data(env, &resp)
	return resp.Token.AccessToken, resp.Account.ID
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		status, env := a.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"storage":"memory"`)
	}
}

func TestAuthentication(t *testing.T) {
	a := newAPI(t)

	status, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@uni.edu", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_001", env.Error.Code)

	status, env = a.do(http.MethodGet, "/api/v1/attributes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_007", env.Error.Code)

	token, _ := a.login("admin@uni.edu", adminPassword)
	status, env = a.do(http.MethodGet, "/api/v1/attributes?entityType=STUDENT", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"name":"firstName"`)
}

func TestEntityLifecycle(t *testing.T) {
	a := newAPI(t)
	admin, _ := a.login("admin@uni.edu", adminPassword)

	status, env := a.do(http.MethodPost, "/api/v1/entities", admin, map[string]interface{}{
		"type":       "COURSE",
		"attributes": map[string]interface{}{"title": "Physics I", "code": "PHY101"},
	})
	require.Equal(t, http.StatusCreated, status, string(env.Data))
	var course struct {
		EntityID string                 `json:"entityId"`
		Entity   map[string]interface{} `json:"entity"`
	}
	a.data(env, &course)
	assert.Equal(t, "Physics I", course.Entity["name"])
	assert.Equal(t, "PHY101", course.Entity["code"])

	// Required catalog attributes are enforced before anything is written
	status, env = a.do(http.MethodPost, "/api/v1/entities", admin, map[string]interface{}{
		"type":       "STUDENT",
		"attributes": map[string]interface{}{"firstName": "Ada"},
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VAL_001", env.Error.Code)

	status, env = a.do(http.MethodPost, "/api/v1/entities", admin, map[string]interface{}{
		"type":       "STUDENT",
		"attributes": map[string]interface{}{"firstName": "Ada", "lastName": "Lovelace", "gpa": "3.9"},
		"relations": []map[string]interface{}{
			{"toId": course.EntityID, "relationType": "ENROLLED_IN", "metadata": map[string]interface{}{"grade": "A"}},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(env.Data))
	var student struct {
		EntityID  string        `json:"entityId"`
		Created   bool          `json:"created"`
		Written   []string      `json:"written"`
		Relations []interface{} `json:"relations"`
	}
	a.data(env, &student)
	assert.True(t, student.Created)
	assert.Equal(t, []string{"firstName", "gpa", "lastName"}, student.Written)
	assert.Len(t, student.Relations, 1)

	status, env = a.do(http.MethodGet, "/api/v1/entities/"+student.EntityID+"?include=ENROLLED_IN:out:courses", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var projection struct {
		GPA     float64                  `json:"gpa"`
		Courses []map[string]interface{} `json:"courses"`
	}
	a.data(env, &projection)
	assert.Equal(t, 3.9, projection.GPA)
	require.Len(t, projection.Courses, 1)
	assert.Equal(t, "A", projection.Courses[0]["grade"])
	assert.Equal(t, "ACTIVE", projection.Courses[0]["status"])

	status, env = a.do(http.MethodGet, "/api/v1/entities?type=STUDENT&attr.firstName=Ada", admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)

	status, env = a.do(http.MethodPost, "/api/v1/entities", admin, map[string]interface{}{"type": "student"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VAL_001", env.Error.Code)

	status, env = a.do(http.MethodGet, "/api/v1/entities", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "type", env.Error.Field)

	status, env = a.do(http.MethodGet, "/api/v1/entities/"+course.EntityID+"/relations?direction=in", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var incoming []map[string]interface{}
	a.data(env, &incoming)
	assert.Len(t, incoming, 1)

	status, _ = a.do(http.MethodDelete, "/api/v1/entities/"+student.EntityID, admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, env = a.do(http.MethodGet, "/api/v1/entities/"+student.EntityID, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "RES_001", env.Error.Code)
}

func TestParentAccess(t *testing.T) {
	a := newAPI(t)
	admin, adminID := a.login("admin@uni.edu", adminPassword)

	status, env := a.do(http.MethodPost, "/api/v1/entities", admin, map[string]interface{}{
		"type":       "STUDENT",
		"attributes": map[string]interface{}{"firstName": "Tim", "lastName": "Doe"},
	})
	require.Equal(t, http.StatusCreated, status)
	var child struct {
		EntityID string `json:"entityId"`
	}
	a.data(env, &child)

	status, env = a.do(http.MethodPost, "/api/v1/accounts", admin, map[string]interface{}{
		"email": "parent@uni.edu", "role": "PARENT", "password": "parent-pass",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = a.do(http.MethodPost, "/api/v1/accounts", admin, map[string]interface{}{
		"email": "parent@uni.edu", "role": "PARENT",
	})
	assert.Equal(t, http.StatusConflict, status)

	parent, parentID := a.login("parent@uni.edu", "parent-pass")

	// First profile read creates and binds the PARENT entity
	status, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/profile", parentID), parent, nil)
	require.Equal(t, http.StatusOK, status)
	var profile map[string]interface{}
	a.data(env, &profile)
	assert.Equal(t, "PARENT", profile["type"])
	parentEntityID := profile["id"].(string)

	status, _ = a.do(http.MethodGet, "/api/v1/entities/"+child.EntityID, parent, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = a.do(http.MethodPost, "/api/v1/relations", admin, map[string]interface{}{
		"fromId": parentEntityID, "toId": child.EntityID, "relationType": "PARENT_OF",
	})
	require.Equal(t, http.StatusCreated, status)
	var rel struct {
		ID string `json:"id"`
	}
	a.data(env, &rel)

	status, _ = a.do(http.MethodPost, "/api/v1/relations", admin, map[string]interface{}{
		"fromId": parentEntityID, "toId": child.EntityID, "relationType": "PARENT_OF",
	})
	assert.Equal(t, http.StatusOK, status, "same triple reuses the relation")

	status, _ = a.do(http.MethodGet, "/api/v1/entities/"+child.EntityID, parent, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(http.MethodGet, "/api/v1/entities?type=STUDENT", parent, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = a.do(http.MethodGet, "/api/v1/accounts/"+adminID, parent, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = a.do(http.MethodPatch, fmt.Sprintf("/api/v1/accounts/%s/profile", parentID), parent, map[string]interface{}{
		"attributes": map[string]interface{}{"phone": "+90 555 000 0000"},
	})
	require.Equal(t, http.StatusOK, status, string(env.Data))
	assert.Contains(t, string(env.Data), `"phone":"+90 555 000 0000"`)

	status, _ = a.do(http.MethodPost, "/api/v1/relations/"+rel.ID+"/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = a.do(http.MethodGet, "/api/v1/entities/"+child.EntityID, parent, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
