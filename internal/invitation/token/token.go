// Package token issues and hashes invitation tokens. Only the keyed
// hash is persisted; the raw token exists in the invitation email and
// nowhere else.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/smallbiznis/huddle/internal/config"
)

const rawLen = 32

type Codec struct {
	secret []byte
}

func NewCodec(cfg config.Config) *Codec {
	return &Codec{secret: []byte(cfg.InvitationSecret)}
}

// Generate returns a new random token as 64 hex characters.
func (c *Codec) Generate() (string, error) {
	buf := make([]byte, rawLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Hash derives the storage form of a token: HMAC-SHA256 keyed by the
// configured secret. Rotating the secret invalidates every outstanding
// invitation.
func (c *Codec) Hash(token string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
