package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"

	"ktvadmin/config"
	"ktvadmin/logger"
	"ktvadmin/middleware"
	"ktvadmin/utils"
)

const adminRole = "admin"

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Handler serves POST /auth/login for the single configured admin account.
type Handler struct {
	cfg config.AuthConfig
	log *logger.Logger
	now func() time.Time
}

func NewHandler(cfg config.AuthConfig, log *logger.Logger) *Handler {
	return &Handler{cfg: cfg, log: log, now: time.Now}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentials
	if !utils.DecodeJSON(w, r, &req) {
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.HandleError(w, h.log, "AUTH", err, "Login failed")
		return
	}

	if req.Username != h.cfg.AdminUsername || h.cfg.AdminPasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)) != nil {
		h.log.Warn("AUTH", "rejected login for "+req.Username)
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, exp, err := IssueToken([]byte(h.cfg.JWTSecret), req.Username, h.cfg.TokenTTL, h.now())
	if err != nil {
		utils.HandleError(w, h.log, "AUTH", err, "Could not issue token")
		return
	}
	h.log.Info("AUTH", "issued token for "+req.Username)
	utils.RespondOK(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp}, "Login successful")
}

// IssueToken signs an HS256 admin token valid for ttl from now.
func IssueToken(secret []byte, username string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := middleware.Claims{
		Username: username,
		Role:     adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
