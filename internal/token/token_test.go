package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issue builds a signed token the way the backend would. The signature
// key is irrelevant because the client never verifies it.
func issue(t *testing.T, sub, username, email string, exp time.Time) string {
	t.Helper()
	claims := &Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestDecode(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	raw := issue(t, "user-1", "alice", "alice@example.com", exp)

	claims, err := Decode(raw)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	id := claims.Identity()
	if id.ID != "user-1" || id.Username != "alice" || id.Email != "alice@example.com" {
		t.Fatalf("identity = %+v", id)
	}
	if claims.Expired(time.Now()) {
		t.Fatalf("token should not be expired")
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-a-token",
		"a.b",
		"a.b.c",
		"%%%.###.@@@",
	}
	for _, raw := range cases {
		if _, err := Decode(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%q expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := issue(t, "u", "bob", "b@example.com", now.Add(-time.Minute))

	claims, err := Decode(past)
	if err != nil {
		t.Fatalf("expired token must still decode: %v", err)
	}
	if !claims.Expired(now) {
		t.Fatalf("token should be expired")
	}

	// Missing exp counts as expired
	noExp := &Claims{}
	if !noExp.Expired(now) {
		t.Fatalf("missing exp should count as expired")
	}
}

func TestValid(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"valid", issue(t, "u", "a", "a@x", now.Add(time.Hour)), true},
		{"expired", issue(t, "u", "a", "a@x", now.Add(-time.Hour)), false},
		{"malformed", "garbage", false},
		{"absent", "", false},
	}
	for _, tc := range cases {
		if got := Valid(tc.raw, now); got != tc.want {
			t.Fatalf("%s: Valid = %v, want %v", tc.name, got, tc.want)
		}
	}
}
