package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/infrastructure/auth"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/workflow"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext - кто пришел с запросом (кладет AuthMiddleware)
func PrincipalFromContext(ctx context.Context) (workflow.Principal, bool) {
	p, ok := ctx.Value(principalKey).(workflow.Principal)
	return p, ok
}

// AuthMiddleware - Bearer-токен обязателен, principal уходит в контекст
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.ValidateAccessToken(parts[1])
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			p := workflow.Principal{UserID: claims.UserID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin - пускаем только админа (ставится после AuthMiddleware)
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || !p.IsAdmin() {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
