package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadSigner mints and verifies HMAC download tokens for stored report
// files. A token is expiry.name.signature, where the name travels
// base64url-encoded and the signature covers both other parts.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner builds a signer with the given secret and token lifetime.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Sign mints a token for a stored file name.
func (s *DownloadSigner) Sign(name string) (string, time.Time, error) {
	if name == "" {
		return "", time.Time{}, fmt.Errorf("file name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(name))
	token := exp + "." + encoded + "." + s.signature(exp, encoded)
	return token, expiresAt, nil
}

// Verify checks the signature and expiry and returns the embedded file name.
func (s *DownloadSigner) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed download token")
	}
	exp, encoded, signature := parts[0], parts[1], parts[2]

	expected := s.signature(exp, encoded)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", fmt.Errorf("download token signature mismatch")
	}

	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid token expiry")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", fmt.Errorf("download token expired")
	}

	name, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode token name: %w", err)
	}
	return string(name), nil
}

func (s *DownloadSigner) signature(exp, encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(exp + "." + encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
