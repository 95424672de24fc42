package auth

import (
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

func sampleContext() SessionContext {
	dept := "dept-1"
	return SessionContext{
		PrincipalID:      "user-1",
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
		DepartmentID:     &dept,
		DepartmentRole:   domain.RoleManager,
		DepartmentRoles:  map[string]domain.Role{"dept-1": domain.RoleManager},
		ProjectRoles:     map[string]domain.Role{"proj-1": domain.RoleMember},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	codec, err := NewTokenCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	original := sampleContext()
	token, expiresAt, err := codec.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expiry must lie in the future")
	}

	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(*decoded, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *decoded, original)
	}
}

func TestTokenExpired(t *testing.T) {
	codec, err := NewTokenCodec("test-secret", time.Millisecond)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	token, _, err := codec.Encode(sampleContext())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode after expiry = %v, want ErrTokenExpired", err)
	}
}

func TestTokenTamperedSignature(t *testing.T) {
	codec, err := NewTokenCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	other, err := NewTokenCodec("different-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	// A token signed under another secret is a forgery to this codec.
	forged, _, err := other.Encode(sampleContext())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := codec.Decode(forged); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Decode(forged) = %v, want ErrInvalidSignature", err)
	}
}

func TestTokenSignatureBitFlips(t *testing.T) {
	codec, err := NewTokenCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	token, _, err := codec.Encode(sampleContext())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	// Flipping any single byte of the signature must be rejected as a
	// signature failure, never accepted or reported as malformed.
	for i := range sig {
		flipped := make([]byte, len(sig))
		copy(flipped, sig)
		flipped[i] ^= 0xFF
		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(flipped)
		if _, err := codec.Decode(tampered); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("Decode with byte %d flipped = %v, want ErrInvalidSignature", i, err)
		}
	}
}

func TestTokenMalformed(t *testing.T) {
	codec, err := NewTokenCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := codec.Decode(input); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Decode(%q) = %v, want ErrTokenMalformed", input, err)
		}
	}

	// Dropping the signature segment entirely is malformed, not unsigned.
	token, _, err := codec.Encode(sampleContext())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	stripped := parts[0] + "." + parts[1] + "."
	if _, err := codec.Decode(stripped); err == nil {
		t.Error("Decode accepted a token with an empty signature")
	}
}

func TestMissingSecret(t *testing.T) {
	if _, err := NewTokenCodec("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("NewTokenCodec(\"\") = %v, want ErrMissingSecret", err)
	}
}

func TestDefaultTTL(t *testing.T) {
	codec, err := NewTokenCodec("test-secret", 0)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	if codec.TTL() != DefaultSessionTTL {
		t.Errorf("TTL() = %v, want %v", codec.TTL(), DefaultSessionTTL)
	}
}
