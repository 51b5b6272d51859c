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

// DownloadSigner mints and checks HMAC-signed download tokens so export
// artifacts can be fetched without a session.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner constructs a signer with the given secret and TTL.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a token granting download access to the artifact until the
// returned expiry.
func (s *DownloadSigner) Sign(artifact string) (string, time.Time, error) {
	if artifact == "" {
		return "", time.Time{}, fmt.Errorf("artifact name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(artifact))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	token := encoded + "." + ts + "." + s.signature(encoded, ts)
	return token, expiresAt, nil
}

// Verify checks a token's signature and expiry and returns the artifact it
// grants access to.
func (s *DownloadSigner) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed download token")
	}
	encoded, ts, signature := parts[0], parts[1], parts[2]

	expected := s.signature(encoded, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", fmt.Errorf("invalid download token signature")
	}

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid download token timestamp")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", fmt.Errorf("download token expired")
	}

	artifact, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode download token: %w", err)
	}
	return string(artifact), nil
}

func (s *DownloadSigner) signature(encoded, ts string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded + "|" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
