package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"ktvadmin/globals"
	"ktvadmin/utils"
)

// JWT claims
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate requires a valid HS256 bearer token. With an empty secret the
// API is open and next is returned unchanged. Websocket upgrades may pass
// the token as ?token= since browsers cannot set headers on them.
func Authenticate(secret []byte, next httprouter.Handle) httprouter.Handle {
	if len(secret) == 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := bearer(r)
		if tokenString == "" && websocket.IsWebSocketUpgrade(r) {
			tokenString = r.URL.Query().Get("token")
		}
		if tokenString == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := ValidateJWT(secret, tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), globals.UsernameKey, claims.Username)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

func ValidateJWT(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, utils.ErrUnauthorized
	}
	return claims, nil
}

func UsernameFrom(ctx context.Context) string {
	name, _ := ctx.Value(globals.UsernameKey).(string)
	return name
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 8 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
