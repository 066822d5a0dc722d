// Package auth guards the definition-management routes with HS256 bearer
// tokens. An empty secret disables the guard entirely, which keeps local
// development friction-free.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const rolesClaim = "roles"

// Guard validates admin bearer tokens.
type Guard struct {
	secret []byte
}

// NewGuard creates a guard keyed with secret. An empty secret yields a
// pass-through guard.
func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(secret)}
}

// Enabled reports whether the guard actually checks tokens.
func (g *Guard) Enabled() bool {
	return len(g.secret) > 0
}

// Middleware wraps next so that it only runs for requests carrying a valid
// admin token.
func (g *Guard) Middleware(next http.HandlerFunc) http.HandlerFunc {
	if !g.Enabled() {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			unauthorized(w, ErrMissingToken)
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: unexpected signing method %s", ErrInvalidToken, t.Method.Alg())
			}
			return g.secret, nil
		})
		if err != nil {
			unauthorized(w, ErrInvalidToken)
			return
		}
		if !hasRole(claims, "admin") {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Mint issues a token carrying roles, valid for ttl. Used by the load-test
// tool and by tests.
func (g *Guard) Mint(subject string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      subject,
		rolesClaim: roles,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func hasRole(claims jwt.MapClaims, want string) bool {
	switch roles := claims[rolesClaim].(type) {
	case string:
		return roles == want
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func unauthorized(w http.ResponseWriter, err error) {
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
}

func forbidden(w http.ResponseWriter) {
	writeJSONError(w, http.StatusForbidden, "forbidden", ErrForbidden.Error())
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}
