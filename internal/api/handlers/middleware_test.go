package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/infrastructure/auth"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/workflow"
)

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret")

	handler := AuthMiddleware(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected request to be rejected")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret")

	handler := AuthMiddleware(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected request to be rejected")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret")

	handler := AuthMiddleware(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected request to be rejected")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret")

	token, err := jwtManager.GenerateAccessToken(7, "anna@example.com", entity.RoleEmployee)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	var gotPrincipal workflow.Principal
	var principalFound bool
	handler := AuthMiddleware(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, principalFound = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !principalFound {
		t.Fatal("Expected principal in request context")
	}
	if gotPrincipal.UserID != 7 {
		t.Errorf("Expected user ID 7, got %d", gotPrincipal.UserID)
	}
	if gotPrincipal.Role != entity.RoleEmployee {
		t.Errorf("Expected role %s, got %s", entity.RoleEmployee, gotPrincipal.Role)
	}
}

func TestAuthMiddlewareRefreshTokenRejected(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret")

	// refresh-токен не годится для доступа к API
	token, err := jwtManager.GenerateRefreshToken(7, "anna@example.com", entity.RoleEmployee)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	handler := AuthMiddleware(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected request to be rejected")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret")

	protected := AuthMiddleware(jwtManager)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	tests := []struct {
		name     string
		role     entity.Role
		wantCode int
	}{
		{"admin passes", entity.RoleAdmin, http.StatusOK},
		{"employee blocked", entity.RoleEmployee, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtManager.GenerateAccessToken(1, "user@example.com", tt.role)
			if err != nil {
				t.Fatalf("Failed to generate token: %v", err)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}
