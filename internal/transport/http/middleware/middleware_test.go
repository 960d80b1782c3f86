package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"medrx_backend/internal/model"
)

type stubVerifier map[string]error

func (s stubVerifier) Parse(token string) (model.Principal, error) {
	if err, ok := s[token]; ok {
		return model.Principal{}, err
	}
	if token == "patient-token" {
		return model.Principal{ID: 42, Role: model.RolePatient}, nil
	}
	return model.Principal{ID: 3, Role: model.RoleDoctor}, nil
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipalFromContext(r.Context())
	w.Header().Set("X-Role", string(p.Role))
	w.WriteHeader(http.StatusOK)
}

func TestAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{
		"expired": model.ErrTokenExpired,
		"forged":  model.ErrTokenInvalid,
	}
	h := AuthMiddleware(verifier)(http.HandlerFunc(okHandler))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantRole   string
		wantCode   string
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "bearer header", header: "Bearer patient-token", wantStatus: http.StatusOK, wantRole: "patient"},
		{name: "lowercase scheme", header: "bearer doctor-token", wantStatus: http.StatusOK, wantRole: "doctor"},
		{name: "cookie fallback", cookie: "patient-token", wantStatus: http.StatusOK, wantRole: "patient"},
		{name: "expired", header: "Bearer expired", wantStatus: http.StatusUnauthorized, wantCode: model.CodeTokenExpired},
		{name: "invalid", header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantCode: model.CodeTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantRole != "" {
				assert.Equal(t, tt.wantRole, rec.Header().Get("X-Role"))
			}
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(model.RoleDoctor)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/prescriptions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/prescriptions", nil)
	req = req.WithContext(WithPrincipal(req.Context(), model.Principal{ID: 42, Role: model.RolePatient}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/prescriptions", nil)
	req = req.WithContext(WithPrincipal(req.Context(), model.Principal{ID: 3, Role: model.RoleDoctor}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLoggerAndRecoverer(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestLogger(logger)(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"message":"handler panicked"`)
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Contains(t, buf.String(), `"path":"/boom"`)
}
