package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkaratas/account-service/internal/auth"
	"github.com/bkaratas/account-service/internal/config"
	"github.com/bkaratas/account-service/internal/repository/memory"
	"github.com/bkaratas/account-service/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Env:                "test",
		RateRPS:            1000,
		JWTSecret:          "test-secret",
		JWTIssuer:          "account-service",
		ReceiverMaxBalance: decimal.RequireFromString("100000"),
	}
	store := memory.NewStore()
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, time.Hour, 24*time.Hour)
	us := services.NewUserService(store.Users(), tm)
	as := services.NewAccountService(store.Accounts(), cfg)

	srv := httptest.NewServer(NewRouter(cfg, tm, us, as))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func signUp(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth", "", map[string]string{
		"email": email, "password": "qweqwe",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createAccount(t *testing.T, srv *httptest.Server, token string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	// first sight registers
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth", "", map[string]string{
		"email": "user1@mail.mail", "password": "qweqwe",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	refresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, refresh)

	// second sight logs in
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth", "", map[string]string{
		"email": "user1@mail.mail", "password": "qweqwe",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// wrong password
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth", "", map[string]string{
		"email": "user1@mail.mail", "password": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// refresh issues a new pair
	resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/v1/auth", "", map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
}

func TestAccountsRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/accounts", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateDepositAndList(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "user1@mail.mail")
	id := createAccount(t, srv, token)

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/v1/accounts/"+id, token, map[string]string{
		"amount": "100",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100", body["balance"])

	for _, amount := range []string{"abc", "-5", "0"} {
		resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/accounts/"+id, token, map[string]string{
			"amount": amount,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "amount=%s", amount)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	var accounts []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&accounts))
	assert.Len(t, accounts, 1)
}

func TestDepositOnForeignAccountIs404(t *testing.T) {
	srv := newTestServer(t)
	alice := signUp(t, srv, "alice@mail.mail")
	mallory := signUp(t, srv, "mallory@mail.mail")
	id := createAccount(t, srv, alice)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/accounts/"+id, mallory, map[string]string{
		"amount": "10",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransferFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := signUp(t, srv, "alice@mail.mail")
	bob := signUp(t, srv, "bob@mail.mail")

	sender := createAccount(t, srv, alice)
	receiver := createAccount(t, srv, bob)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/accounts/"+sender, alice, map[string]string{
		"amount": "1000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts/"+sender+"/transfer", alice, map[string]string{
		"receiver": receiver, "amount": "100",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, sender, body["sender"])
	assert.Equal(t, receiver, body["receiver"])
	assert.Equal(t, "100", body["amount"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/accounts/"+sender, alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "900", body["balance"])

	// self transfer
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts/"+sender+"/transfer", alice, map[string]string{
		"receiver": sender, "amount": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// insufficient funds
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts/"+sender+"/transfer", alice, map[string]string{
		"receiver": receiver, "amount": "100000",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// unknown receiver
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts/"+sender+"/transfer", alice, map[string]string{
		"receiver": "no-such-id", "amount": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// bob cannot spend alice's account
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts/"+sender+"/transfer", bob, map[string]string{
		"receiver": receiver, "amount": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsersListIsAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "user1@mail.mail")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
