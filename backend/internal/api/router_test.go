package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kinnected/backend/internal/auth"
	"kinnected/backend/internal/family"
	"kinnected/backend/internal/graph"
	"kinnected/backend/internal/identity"
	"kinnected/backend/pkg/apperrors"
	"kinnected/backend/pkg/logger"
)

func init() {
	logger.Init("development")
	gin.SetMode(gin.TestMode)
}

// fakeBackend implements every handler service interface in memory
type fakeBackend struct {
	account  *graph.Account
	relation *graph.Relation
	created  bool
	err      error
}

func (f *fakeBackend) Register(_ context.Context, _ identity.RegisterRequest) (*graph.Account, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.account, "fake-token", nil
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (*graph.Account, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.account, "fake-token", nil
}

func (f *fakeBackend) GetByID(_ context.Context, id string) (*graph.Account, error) {
	if f.account != nil && f.account.ID == id {
		return f.account, nil
	}
	return nil, apperrors.NotFound("User not found")
}

func (f *fakeBackend) GetProfile(_ context.Context, username string) (*graph.Account, error) {
	if f.account != nil && f.account.Username == username {
		return f.account, nil
	}
	return nil, apperrors.NotFound("User not found")
}

func (f *fakeBackend) UpdateProfile(_ context.Context, _ string, update graph.AccountUpdate) (*graph.Account, error) {
	if update.Empty() {
		return nil, apperrors.Validation("No updates provided")
	}
	return f.account, nil
}

func (f *fakeBackend) Search(_ context.Context, query string) ([]*graph.AccountSummary, error) {
	if query == "" {
		return nil, apperrors.Validation("Search query is required")
	}
	return []*graph.AccountSummary{f.account.Summary()}, nil
}

func (f *fakeBackend) Delete(_ context.Context, _ string) error {
	return f.err
}

func (f *fakeBackend) AddOrUpdate(_ context.Context, _ string, _ *family.AddRelationInput) (*graph.Relation, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.relation, f.created, nil
}

func (f *fakeBackend) Relations(_ context.Context, _, _ string) ([]*graph.RelationView, error) {
	return []*graph.RelationView{}, nil
}

func (f *fakeBackend) PendingRequests(_ context.Context, _ string) ([]*graph.Relation, error) {
	return []*graph.Relation{f.relation}, nil
}

func (f *fakeBackend) Accept(_ context.Context, _, _ string) (*graph.Relation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.relation, nil
}

func (f *fakeBackend) Reject(_ context.Context, _, _ string) error {
	return f.err
}

func (f *fakeBackend) Query(_ context.Context, _ string) (string, error) {
	return "advice", f.err
}

func (f *fakeBackend) Suggestions(_ context.Context, _, _ string) (string, error) {
	return "- suggestion", f.err
}

func testAccount() *graph.Account {
	return &graph.Account{
		ID:       "acc-1",
		Username: "alice",
		FullName: "Alice Hargrove",
		Email:    "alice@example.com",
	}
}

func newTestRouter(backend *fakeBackend, tokens *auth.TokenManager) *gin.Engine {
	return NewRouter(Services{
		Auth:     backend,
		Users:    backend,
		Family:   backend,
		Chat:     backend,
		Accounts: backend,
	}, Options{
		Tokens:         tokens,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeBackend{}, auth.NewTokenManager("test-secret", time.Hour))

	w := doJSON(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestRegisterEndpoint(t *testing.T) {
	backend := &fakeBackend{account: testAccount()}
	router := newTestRouter(backend, auth.NewTokenManager("test-secret", time.Hour))

	w := doJSON(router, "POST", "/api/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Password1!",
		"fullName": "Alice Hargrove",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "fake-token", body["token"])

	// Session cookie is set alongside the token
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "fake-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}

func TestRegisterEndpointValidationError(t *testing.T) {
	backend := &fakeBackend{err: apperrors.Validation("Validation failed", "Username must be between 3 and 30 characters")}
	router := newTestRouter(backend, auth.NewTokenManager("test-secret", time.Hour))

	w := doJSON(router, "POST", "/api/auth/register", "", gin.H{"username": "a"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NotEmpty(t, body["errors"])
}

func TestLoginEndpointAuthenticationError(t *testing.T) {
	backend := &fakeBackend{err: apperrors.Authentication("Invalid username or password")}
	router := newTestRouter(backend, auth.NewTokenManager("test-secret", time.Hour))

	w := doJSON(router, "POST", "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decodeBody(t, w)["message"])
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newTestRouter(&fakeBackend{}, auth.NewTokenManager("test-secret", time.Hour))

	w := doJSON(router, "POST", "/api/auth/logout", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(&fakeBackend{account: testAccount()}, auth.NewTokenManager("test-secret", time.Hour))

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/auth/me"},
		{"GET", "/api/users/profile"},
		{"POST", "/api/connections"},
		{"POST", "/api/ai/query"},
	} {
		w := doJSON(router, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.Equal(t, "No token provided", decodeBody(t, w)["message"])
	}
}

func TestAuthViaBearerToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	backend := &fakeBackend{account: testAccount()}
	router := newTestRouter(backend, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	// The hash never reaches the wire
	assert.NotContains(t, user, "passwordHash")
}

func TestAuthViaCookie(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newTestRouter(&fakeBackend{account: testAccount()}, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsUnknownAccount(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newTestRouter(&fakeBackend{account: testAccount()}, tokens)

	token, err := tokens.Issue("deleted-account")
	require.NoError(t, err)

	w := doJSON(router, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not found", decodeBody(t, w)["message"])
}

func TestUpdateProfileRejectsUnknownFields(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newTestRouter(&fakeBackend{account: testAccount()}, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "PUT", "/api/users/profile", token, gin.H{"username": "newname"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid updates", decodeBody(t, w)["message"])
}

func TestCreateConnectionStatusReflectsCreation(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	relation := &graph.Relation{ID: "rel-1", Type: graph.RelationMother, IsPlaceholder: true, FullName: "Margaret"}

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	body := gin.H{"relationType": "mother", "isPlaceholder": true, "fullName": "Margaret"}

	// New record answers 201
	backend := &fakeBackend{account: testAccount(), relation: relation, created: true}
	w := doJSON(newTestRouter(backend, tokens), "POST", "/api/connections", token, body)
	assert.Equal(t, http.StatusCreated, w.Code)

	// In-place placeholder update answers 200
	backend = &fakeBackend{account: testAccount(), relation: relation, created: false}
	w = doJSON(newTestRouter(backend, tokens), "POST", "/api/connections", token, body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateConnectionInvalidType(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newTestRouter(&fakeBackend{account: testAccount()}, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/connections", token, gin.H{"relationType": "cousin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid relation type", decodeBody(t, w)["message"])
}

// TestRouteSurface pins every documented path, method, and query parameter so
// a rename breaks loudly here rather than 404ing real clients.
func TestRouteSurface(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	relation := &graph.Relation{ID: "rel-1", Type: graph.RelationSibling, Status: graph.StatusPending}
	backend := &fakeBackend{account: testAccount(), relation: relation, created: true}
	router := newTestRouter(backend, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	routes := []struct {
		method, path string
		status       int
		key          string
	}{
		{"POST", "/api/auth/register", http.StatusCreated, "user"},
		{"POST", "/api/auth/login", http.StatusOK, "user"},
		{"POST", "/api/auth/logout", http.StatusOK, "message"},
		{"GET", "/api/auth/me", http.StatusOK, "user"},
		{"GET", "/api/users/profile", http.StatusOK, "user"},
		{"GET", "/api/users/profile/alice", http.StatusOK, "user"},
		{"PUT", "/api/users/profile", http.StatusBadRequest, "message"},
		{"GET", "/api/users/search?query=ali", http.StatusOK, "users"},
		{"DELETE", "/api/users/account", http.StatusOK, "message"},
		{"POST", "/api/connections", http.StatusCreated, "relation"},
		{"GET", "/api/connections/relations", http.StatusOK, "relations"},
		{"GET", "/api/connections/relations/acc-2", http.StatusOK, "relations"},
		{"GET", "/api/connections/pending", http.StatusOK, "requests"},
		{"PATCH", "/api/connections/accept/rel-1", http.StatusOK, "relation"},
		{"PATCH", "/api/connections/reject/rel-1", http.StatusOK, "message"},
		{"POST", "/api/ai/query", http.StatusOK, "response"},
		{"POST", "/api/ai/suggestions", http.StatusOK, "suggestions"},
	}

	for _, route := range routes {
		var body interface{}
		switch route.path {
		case "/api/connections":
			body = gin.H{"relationType": "sibling", "isPlaceholder": true, "fullName": "Margaret"}
		case "/api/ai/query":
			body = gin.H{"query": "hello"}
		case "/api/ai/suggestions":
			body = gin.H{"relation": "sibling"}
		case "/api/auth/register", "/api/auth/login":
			body = gin.H{"username": "alice", "password": "Password1!"}
		default:
			body = gin.H{}
		}

		w := doJSON(router, route.method, route.path, token, body)
		require.Equal(t, route.status, w.Code, "%s %s", route.method, route.path)
		assert.Contains(t, decodeBody(t, w), route.key, "%s %s", route.method, route.path)
	}
}

// The pending inbox is its own resource; it must never fall through to the
// relations listing and answer with the wrong collection.
func TestPendingInboxIsNotARelationsListing(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	relation := &graph.Relation{ID: "rel-1", Type: graph.RelationSibling, Status: graph.StatusPending}
	router := newTestRouter(&fakeBackend{account: testAccount(), relation: relation}, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "GET", "/api/connections/pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Contains(t, body, "requests")
	assert.NotContains(t, body, "relations")

	requests := body["requests"].([]interface{})
	require.Len(t, requests, 1)
}

func TestSearchUsesQueryParameter(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newTestRouter(&fakeBackend{account: testAccount()}, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "GET", "/api/users/search?query=ali", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decodeBody(t, w)["users"].([]interface{})
	assert.Len(t, users, 1)

	// A different parameter name reads as an empty query
	w = doJSON(router, "GET", "/api/users/search?q=ali", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRejectConnectionMessage(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newTestRouter(&fakeBackend{account: testAccount()}, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "PATCH", "/api/connections/reject/rel-1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Connection request rejected", decodeBody(t, w)["message"])
}

func TestAcceptMissingRequest(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	backend := &fakeBackend{account: testAccount(), err: apperrors.NotFound("Connection request not found")}
	router := newTestRouter(backend, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "PATCH", "/api/connections/accept/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAIQueryEndpoint(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := newTestRouter(&fakeBackend{account: testAccount()}, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/ai/query", token, gin.H{"query": "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "advice", decodeBody(t, w)["response"])
}

func TestServerErrorsAreOpaque(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	backend := &fakeBackend{account: testAccount(), err: apperrors.Server("Database unavailable", assert.AnError)}
	router := newTestRouter(backend, tokens)

	token, err := tokens.Issue("acc-1")
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/ai/query", token, gin.H{"query": "hello"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
