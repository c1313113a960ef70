package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"planets-tableau/internal/player"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestNewTokenIssuer_Validation(t *testing.T) {
	if _, err := NewTokenIssuer("short", time.Hour); err == nil {
		t.Fatalf("expected error for short secret")
	}
	if _, err := NewTokenIssuer(secret, 0); err == nil {
		t.Fatalf("expected error for zero expiration")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	issuer, err := NewTokenIssuer(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	p, _ := player.New("Aaron")
	gameID := uuid.New()

	token, err := issuer.Generate(gameID, p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.GameID != gameID || claims.PlayerID != p.ID || claims.Name != "Aaron" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Subject != p.ID.String() {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestValidate_RejectsOtherSecret(t *testing.T) {
	a, _ := NewTokenIssuer(secret, time.Hour)
	b, _ := NewTokenIssuer(strings.Repeat("z", 32), time.Hour)
	p, _ := player.New("Peter")

	token, _ := a.Generate(uuid.New(), p)
	if _, err := b.Validate(token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestValidate_RejectsExpired(t *testing.T) {
	issuer, _ := NewTokenIssuer(secret, time.Minute)
	start := time.Now()
	issuer.now = func() time.Time { return start }

	p, _ := player.New("Peter")
	token, _ := issuer.Generate(uuid.New(), p)

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := issuer.Validate(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestValidate_RejectsGarbage(t *testing.T) {
	issuer, _ := NewTokenIssuer(secret, time.Hour)
	if _, err := issuer.Validate("not-a-token"); err == nil {
		t.Fatalf("expected parse error")
	}
}
