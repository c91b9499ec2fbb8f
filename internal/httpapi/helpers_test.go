package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"dukaan/backend/internal/service"
	"dukaan/backend/internal/store/memory"
)

const testSecret = "test-secret-key-with-at-least-32-bytes"

// newTestAPI wires a real service over the seeded memory store so handler
// tests exercise the full request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, service.Options{Logger: zerolog.Nop()})
	auth := NewAuthManager(testSecret, time.Hour, svc)
	return New(svc, auth, Options{AllowedOrigin: "*", Logger: zerolog.Nop()})
}

type responseBody struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) responseBody {
	t.Helper()
	var body responseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	body := decodeBody(t, rec)
	require.True(t, body.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(body.Data, dest))
}

func fetchCSRFToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Token string `json:"csrf_token"`
	}
	decodeData(t, rec, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func loginAs(t *testing.T, handler http.Handler, username string, password string) string {
	t.Helper()
	rec := send(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, rec, &data)
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

// send issues a JSON request. State changing requests carry a fresh CSRF token.
func send(t *testing.T, handler http.Handler, method string, path string, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if isStateChanging(method) {
		req.Header.Set("X-CSRF-Token", fetchCSRFToken(t, handler))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func jsonUnmarshal(raw json.RawMessage, dest any) error {
	return json.Unmarshal(raw, dest)
}
