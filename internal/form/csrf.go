// internal/form/csrf.go
//
// Barali – Forms subsystem: stateless CSRF token utilities.
//
// Context
//   Rendered forms embed a hidden `csrf_token` input.  The server verifies it
//   on POST to ensure the request originated from a form it rendered.  The
//   token is stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – keyed with the process secret (session.csrf_key in config).
//
//   Verification checks the signature and that the timestamp is within
//   maxAge.  No server-side state is required.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig
	maxAge     = 2 * time.Hour        // token valid window
	csrfField  = "csrf_token"
)

var (
	secretMu  sync.RWMutex
	secretKey []byte
)

// SetSecret installs the HMAC key.  Keys shorter than 32 bytes are rejected
// and a random key is used instead.
func SetSecret(key []byte) {
	secretMu.Lock()
	defer secretMu.Unlock()
	if len(key) >= 32 {
		secretKey = append([]byte(nil), key...)
		return
	}
	secretKey = randomKey()
	zap.S().Warnw("csrf key missing or shorter than 32 bytes, using ephemeral key")
}

// GenerateToken creates a new CSRF token.  Call once per form render.
func GenerateToken() (string, error) {
	sec := fetchSecret()

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(time.Now().UnixMicro()))

	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(ts)
	sig := mac.Sum(nil)

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sig...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken returns true if tok passes HMAC and age checks.
func VerifyToken(tok string) bool {
	sec := fetchSecret()

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:16]
	tsBytes := raw[16:24]
	sig := raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	if time.Since(issued) > maxAge || time.Until(issued) > time.Minute {
		return false
	}

	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(tsBytes)
	return hmac.Equal(sig, mac.Sum(nil))
}

// fetchSecret returns the process-wide secret, generating an ephemeral one
// when SetSecret was never called (tests, the CLI).
func fetchSecret() []byte {
	secretMu.RLock()
	k := secretKey
	secretMu.RUnlock()
	if k != nil {
		return k
	}

	secretMu.Lock()
	defer secretMu.Unlock()
	if secretKey == nil {
		secretKey = randomKey()
	}
	return secretKey
}

func randomKey() []byte {
	k := make([]byte, 32)
	_, _ = rand.Read(k)
	return k
}
