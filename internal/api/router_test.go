package api

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/davidnrm/critiq/internal/auth"
	"github.com/davidnrm/critiq/internal/database/testutil"
)

// longDescription satisfies the 120 character minimum on product reviews.
var longDescription = strings.Repeat("A thoroughly considered review of this product covering build quality, value and daily use. ", 2)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	accessKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	refreshKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokens, err := iauth.NewTokenService(iauth.TokenConfig{
		AccessKeys:  iauth.KeyPair{Private: accessKey, Public: &accessKey.PublicKey},
		RefreshKeys: iauth.KeyPair{Private: refreshKey, Public: &refreshKey.PublicKey},
		Issuer:      "critiq-test",
	})
	require.NoError(t, err)

	credentials, err := iauth.NewCredentialVerifier(db, iauth.CredentialsConfig{WorkFactor: 4})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, tokens, credentials, iauth.SessionConfig{})
	require.NoError(t, err)

	router, err := NewRouter(db, tokens, sessions, credentials)
	require.NoError(t, err)

	return &testServer{router: router, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func (s *testServer) register(t *testing.T, name, email, password string) {
	t.Helper()

	rec, _ := s.do(t, http.MethodPost, "/api/users", "", gin.H{
		"name":                 name,
		"email":                email,
		"password":             password,
		"passwordConfirmation": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func (s *testServer) login(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()

	rec, body := s.do(t, http.MethodPost, "/api/sessions", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	access, _ = data["accessToken"].(string)
	refresh, _ = data["refreshToken"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/check", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	require.Equal(t, "ok", data["status"])
	require.Equal(t, "ok", data["database"])
}

func TestRegisterUser(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/users", "", gin.H{
		"name":                 "Agus",
		"email":                "agus@x.com",
		"password":             "secret123",
		"passwordConfirmation": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	require.Equal(t, "agus@x.com", data["email"])
	require.Equal(t, "Agus", data["name"])
	require.NotContains(t, data, "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Agus", "agus@x.com", "secret123")

	rec, body := s.do(t, http.MethodPost, "/api/users", "", gin.H{
		"name":                 "Imposter",
		"email":                "agus@x.com",
		"password":             "secret456",
		"passwordConfirmation": "secret456",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, false, body["success"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]gin.H{
		"mismatched confirmation": {
			"name": "Agus", "email": "a@x.com",
			"password": "secret123", "passwordConfirmation": "different",
		},
		"short password": {
			"name": "Agus", "email": "a@x.com",
			"password": "abc", "passwordConfirmation": "abc",
		},
		"invalid email": {
			"name": "Agus", "email": "not-an-email",
			"password": "secret123", "passwordConfirmation": "secret123",
		},
		"missing name": {
			"email":    "a@x.com",
			"password": "secret123", "passwordConfirmation": "secret123",
		},
	}

	for name, payload := range cases {
		rec, _ := s.do(t, http.MethodPost, "/api/users", "", payload)
		require.Equalf(t, http.StatusBadRequest, rec.Code, "case %q", name)
	}
}

func TestLoginReturnsTokenPair(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Agus", "agus@x.com", "secret123")

	access, refresh := s.login(t, "agus@x.com", "secret123")
	require.NotEqual(t, access, refresh)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Agus", "agus@x.com", "secret123")

	wrongPassword, wrongBody := s.do(t, http.MethodPost, "/api/sessions", "", gin.H{
		"email": "agus@x.com", "password": "incorrect",
	})
	unknownEmail, unknownBody := s.do(t, http.MethodPost, "/api/sessions", "", gin.H{
		"email": "nobody@x.com", "password": "secret123",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Identical status and body: the response never reveals whether the
	// account exists.
	require.Equal(t, wrongBody, unknownBody)
}

func TestListSessionsRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Agus", "agus@x.com", "secret123")

	rec, _ := s.do(t, http.MethodGet, "/api/sessions", "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	s.login(t, "agus@x.com", "secret123")
	access, _ := s.login(t, "agus@x.com", "secret123")

	rec, body := s.do(t, http.MethodGet, "/api/sessions", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sessions := body["data"].([]any)
	require.Len(t, sessions, 2)
}

func TestLogoutReturnsNullTokenPair(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Agus", "agus@x.com", "secret123")
	access, _ := s.login(t, "agus@x.com", "secret123")

	rec, body := s.do(t, http.MethodDelete, "/api/sessions", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	require.Contains(t, data, "accessToken")
	require.Contains(t, data, "refreshToken")
	require.Nil(t, data["accessToken"])
	require.Nil(t, data["refreshToken"])

	// The session is gone from the active list.
	rec, body = s.do(t, http.MethodGet, "/api/sessions", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["data"])
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Agus", "agus@x.com", "secret123")
	access, _ := s.login(t, "agus@x.com", "secret123")

	rec, body := s.do(t, http.MethodPost, "/api/products", access, gin.H{
		"title":       "Canon EOS 1500D",
		"description": longDescription,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	productID := data["productId"].(string)
	require.True(t, strings.HasPrefix(productID, "product_"))
	require.Equal(t, "Canon EOS 1500D", data["title"])

	// Reads are public.
	rec, body = s.do(t, http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Canon EOS 1500D", body["data"].(map[string]any)["title"])

	rec, body = s.do(t, http.MethodPut, "/api/products/"+productID, access, gin.H{
		"title":       "Canon EOS 1500D (revised)",
		"description": longDescription,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Canon EOS 1500D (revised)", body["data"].(map[string]any)["title"])

	rec, _ = s.do(t, http.MethodDelete, "/api/products/"+productID, access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductOwnership(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Owner", "owner@x.com", "secret123")
	s.register(t, "Other", "other@x.com", "secret123")

	ownerToken, _ := s.login(t, "owner@x.com", "secret123")
	otherToken, _ := s.login(t, "other@x.com", "secret123")

	_, body := s.do(t, http.MethodPost, "/api/products", ownerToken, gin.H{
		"title":       "Tripod",
		"description": longDescription,
	})
	productID := body["data"].(map[string]any)["productId"].(string)

	rec, _ := s.do(t, http.MethodPut, "/api/products/"+productID, otherToken, gin.H{
		"title":       "Hijacked",
		"description": longDescription,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/products/"+productID, otherToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Still intact under the original title.
	rec, body = s.do(t, http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Tripod", body["data"].(map[string]any)["title"])
}

func TestProductValidationAndAuth(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Agus", "agus@x.com", "secret123")
	access, _ := s.login(t, "agus@x.com", "secret123")

	// Too-short description.
	rec, _ := s.do(t, http.MethodPost, "/api/products", access, gin.H{
		"title":       "Tripod",
		"description": "too short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Writes require an identity.
	rec, _ = s.do(t, http.MethodPost, "/api/products", "", gin.H{
		"title":       "Tripod",
		"description": longDescription,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/products/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
