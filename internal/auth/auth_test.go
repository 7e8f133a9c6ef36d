package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := &Manager{Secret: []byte("s3cret"), AccessTTL: time.Hour, Issuer: "bssaj-admin"}
	token, err := m.NewSessionToken("rahim", RoleAdmin)
	if err != nil {
		t.Fatalf("NewSessionToken error: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "rahim" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredAndForeignTokensRejected(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	m := &Manager{Secret: []byte("s3cret"), AccessTTL: time.Hour, Issuer: "bssaj-admin", now: func() time.Time { return issued }}
	token, _ := m.NewSessionToken("rahim", RoleAdmin)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := m.Parse(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	other := &Manager{Secret: []byte("other"), AccessTTL: time.Hour, Issuer: "bssaj-admin"}
	foreign, _ := other.NewSessionToken("mallory", RoleAdmin)
	m.now = nil
	if _, err := m.Parse(foreign); err == nil {
		t.Fatalf("expected token signed with another secret to fail")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if err := ComparePassword(hash, "correct horse"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if err := ComparePassword("not-a-hash", "x"); err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected malformed hash error, got %v", err)
	}
}

func TestParseWrapsInvalidSession(t *testing.T) {
	m := &Manager{Secret: []byte("s3cret"), AccessTTL: time.Hour, Issuer: "bssaj-admin"}
	if _, err := m.Parse("not.a.token"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	anonymous, _ := m.NewSessionToken("", RoleAdmin)
	if _, err := m.Parse(anonymous); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected token without subject to fail, got %v", err)
	}
	other := &Manager{Secret: []byte("s3cret"), AccessTTL: time.Hour, Issuer: "someone-else"}
	foreign, _ := other.NewSessionToken("rahim", RoleAdmin)
	if _, err := m.Parse(foreign); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected foreign issuer to fail, got %v", err)
	}
}
