package user

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/vidextract/vidextract/server/config"
)

func setupAuth(t *testing.T, password string) {
	t.Helper()

	sum := sha256.Sum256([]byte(password))
	config.Instance().Authentication = config.AuthConfig{
		RequireAuth:  true,
		Username:     "admin",
		PasswordHash: hex.EncodeToString(sum[:]),
	}
}

func TestSignAndVerifyToken(t *testing.T) {
	setupAuth(t, "hunter2")

	token, err := signToken("admin")
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if err := VerifyToken(token); err != nil {
		t.Errorf("freshly issued token rejected: %v", err)
	}

	if err := VerifyToken(token + "tampered"); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestCheckCredentials(t *testing.T) {
	setupAuth(t, "hunter2")

	if err := checkCredentials(LoginRequest{Username: "admin", Password: "hunter2"}); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}

	if err := checkCredentials(LoginRequest{Username: "admin", Password: "wrong"}); err == nil {
		t.Error("wrong password accepted")
	}

	if err := checkCredentials(LoginRequest{Username: "root", Password: "hunter2"}); err == nil {
		t.Error("wrong username accepted")
	}
}
