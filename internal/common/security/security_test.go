package security

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/pbkdf2"
)

func TestBcryptRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("hunter22", hash) {
		t.Fatalf("expected password to match")
	}
	if CheckPasswordHash("hunter23", hash) {
		t.Fatalf("expected mismatch")
	}
}

func TestDjangoPBKDF2Hash(t *testing.T) {
	key := pbkdf2.Key([]byte("s3cret!"), []byte("NaCl1234"), 1000, 32, sha256.New)
	encoded := fmt.Sprintf("pbkdf2_sha256$%d$%s$%s", 1000, "NaCl1234", base64.StdEncoding.EncodeToString(key))

	if !CheckPasswordHash("s3cret!", encoded) {
		t.Fatalf("expected legacy hash to verify")
	}
	if CheckPasswordHash("s3cret", encoded) {
		t.Fatalf("expected legacy hash mismatch")
	}
	if CheckPasswordHash("s3cret!", "pbkdf2_sha256$abc$salt$xx") {
		t.Fatalf("malformed hash must not verify")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	InitTokenAuth([]byte("test-secret"), "sessionid")

	token, err := GenerateSessionToken("abc-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var gotSID string
	handler := jwtauth.Verify(TokenAuth, TokenFromSessionCookie)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			t.Fatalf("from context: %v", err)
		}
		gotSID, err = GetSessionIDFromClaims(claims)
		if err != nil {
			t.Fatalf("claims: %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotSID != "abc-123" {
		t.Fatalf("expected sid abc-123, got %q", gotSID)
	}
}
