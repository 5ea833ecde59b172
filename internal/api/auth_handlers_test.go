package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"katalog-mediow/internal/models"

	"github.com/stretchr/testify/require"
)

func doLogin(t *testing.T, username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	return rr
}

func TestAPI_Login(t *testing.T) {
	rr := doLogin(t, "api_test_user", "password")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	require.Equal(t, "api_test_user", resp.User.Username)
	// Hash hasła nigdy nie wychodzi w odpowiedzi
	require.NotContains(t, rr.Body.String(), "password_hash")

	// Token z odpowiedzi uwierzytelnia kolejne żądania
	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestAPI_Login_BadCredentials(t *testing.T) {
	// Zła odpowiedź jest identyczna dla złego hasła i nieznanego użytkownika
	rr := doLogin(t, "api_test_user", "zle_haslo")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	badPassword := rr.Body.String()

	rr = doLogin(t, "nie_ma_takiego_uzytkownika", "password")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, badPassword, rr.Body.String())
}

func TestAPI_RefreshRotation(t *testing.T) {
	rr := doLogin(t, "api_test_user", "password")
	require.Equal(t, http.StatusOK, rr.Code)
	var login loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))

	body, _ := json.Marshal(map[string]string{"refreshToken": login.RefreshToken})
	req := httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var refreshed loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.Token)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// Stary refresh token został zrotowany i już nie działa
	req = httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_Logout(t *testing.T) {
	rr := doLogin(t, "api_test_user", "password")
	require.Equal(t, http.StatusOK, rr.Code)
	var login loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))

	body, _ := json.Marshal(map[string]string{"refreshToken": login.RefreshToken})
	req := httptest.NewRequest("POST", "/api/v1/auth/logout", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// Sesja skasowana, refresh już nie przejdzie
	req = httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPI_ListMySessions(t *testing.T) {
	rr := doLogin(t, "api_test_user", "password")
	require.Equal(t, http.StatusOK, rr.Code)
	var login loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))

	req := httptest.NewRequest("GET", "/api/v1/me/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var sessions []models.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sessions))
	require.NotEmpty(t, sessions)
	// Refresh token nie wycieka w odpowiedzi
	require.NotContains(t, rr.Body.String(), login.RefreshToken)
}

func TestAPI_AuthMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	rr := httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer nie.jest.tokenem")
	rr = httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
