package http

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/perplexiplay/backend/internal/auth/repository"
	"github.com/perplexiplay/backend/internal/auth/service"
	"github.com/perplexiplay/backend/internal/common/clock"
	"github.com/perplexiplay/backend/internal/common/crypto"
	commonhttp "github.com/perplexiplay/backend/internal/common/http"
	"github.com/perplexiplay/backend/internal/common/logger"
)

const testSecret = "test-secret-key-that-is-32-bytes!!"

type testServer struct {
	handler http.Handler
	clock   *clock.MockClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.NewWithWriter(io.Discard, "test", "ERROR")
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	store, err := repository.Open(
		context.Background(),
		log,
		repository.StoreConfig{DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "auth.db")},
		crypto.NewUUIDGenerator(),
		clk,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	codec := service.NewJWTCodec(testSecret, 30*time.Minute, clk)
	auth := service.NewAuthService(store.Users, crypto.NewBcryptHasher(bcrypt.MinCost), codec, nil, log)
	resolver := service.NewIdentityResolver(codec, store.Users, log)

	mux := NewHandler(auth, resolver, 5*time.Second, log)
	return &testServer{handler: commonhttp.BuildBaseHandler(log, mux), clock: clk}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) login(username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) me(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return s.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) accessToken(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.login(username, password)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHandler_RegisterLoginMeScenario(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.register("alice", "s3cret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	registered := decode(t, rec)
	assert.Equal(t, "alice", registered["username"])
	assert.NotEmpty(t, registered["id"])
	assert.NotEmpty(t, registered["created_at"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = srv.login("alice", "s3cret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode(t, rec)
	assert.Equal(t, "bearer", token["token_type"])
	accessToken, _ := token["access_token"].(string)
	require.NotEmpty(t, accessToken)

	rec = srv.me("Bearer " + accessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decode(t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, registered["id"], me["id"])

	rec = srv.me("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestHandler_RegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusOK, srv.register("alice", "s3cret").Code)

	rec := srv.register("alice", "other")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "USERNAME_ALREADY_REGISTERED", body["code"])
	assert.Equal(t, "username already registered", body["message"])
}

func TestHandler_RegisterIgnoresUnknownFields(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"bob","password":"pw","email":"bob@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := srv.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bob", decode(t, rec)["username"])
}

func TestHandler_RegisterInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	rec := srv.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decode(t, rec)["code"])
}

func TestHandler_RegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.register("", "s3cret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, rec)["code"])
}

func TestHandler_RegisterTooLarge(t *testing.T) {
	srv := newTestServer(t)

	payload := `{"username":"alice","password":"` + strings.Repeat("p", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(payload))
	rec := srv.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_LoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, srv.register("alice", "s3cret").Code)

	wrongPassword := srv.login("alice", "nope")
	unknownUser := srv.login("mallory", "s3cret")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, "Bearer", wrongPassword.Header().Get("WWW-Authenticate"))

	a, b := decode(t, wrongPassword), decode(t, unknownUser)
	assert.Equal(t, "Incorrect username or password", a["message"])
	assert.Equal(t, a["code"], b["code"])
	assert.Equal(t, a["message"], b["message"])
}

func TestHandler_LoginAcceptsMultipartForm(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, srv.register("alice", "s3cret").Code)

	var body strings.Builder
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("username", "alice"))
	require.NoError(t, mw.WriteField("password", "s3cret"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := srv.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "bearer", out["token_type"])
	assert.NotEmpty(t, out["access_token"])
}

func TestHandler_LoginRequiresForm(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := srv.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_MeRejectsBadTokens(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, srv.register("alice", "s3cret").Code)
	token := srv.accessToken(t, "alice", "s3cret")

	tests := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic " + token},
		{"empty bearer", "Bearer "},
		{"tampered", "Bearer " + token[:len(token)-2] + "xx"},
		{"garbage", "Bearer not.a.token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.me(tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			body := decode(t, rec)
			assert.Equal(t, "UNAUTHENTICATED", body["code"])
			assert.Equal(t, "Could not validate credentials", body["message"])
		})
	}
}

func TestHandler_MeExpiredToken(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, srv.register("alice", "s3cret").Code)
	token := srv.accessToken(t, "alice", "s3cret")

	srv.clock.Advance(31 * time.Minute)

	rec := srv.me("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_MeAcceptsLowercaseScheme(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusOK, srv.register("alice", "s3cret").Code)
	token := srv.accessToken(t, "alice", "s3cret")

	rec := srv.me("bearer " + token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Health(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/auth/register", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandler_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["code"])
}
