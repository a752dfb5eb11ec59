// Package user implements password login for the local API. A
// successful login issues a signed token cookie which the
// authentication middleware checks on every request.
package user

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidextract/vidextract/server/config"
)

const TokenCookieName = "jwt"

var errInvalidCredentials = errors.New("invalid username or password")

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func signToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Instance().Authentication.PasswordHash))
}

// VerifyToken parses and validates a token previously issued by Login.
func VerifyToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.Instance().Authentication.PasswordHash), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

func checkCredentials(req LoginRequest) error {
	auth := config.Instance().Authentication

	if req.Username != auth.Username {
		return errInvalidCredentials
	}

	sum := sha256.Sum256([]byte(req.Password))
	if hex.EncodeToString(sum[:]) != auth.PasswordHash {
		return errInvalidCredentials
	}

	return nil
}

func Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	defer r.Body.Close()
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := checkCredentials(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := signToken(req.Username)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if err := json.NewEncoder(w).Encode(token); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode("ok")
}

