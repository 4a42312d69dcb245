package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"math/big"

	"github.com/ecotrack/backend/internal/config"
	"golang.org/x/crypto/argon2"
)

const (
	codeMin   = 100000
	codeRange = 900000
)

// generateOTP returns a uniformly random six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(codeMin)).String(), nil
}

// CodeHasher derives the at-rest digest of a one-time code. The salt binds the
// digest to the mobile number, so equal codes for different users differ.
type CodeHasher struct {
	pepper string
	params config.Argon2Config
}

func NewCodeHasher(pepper string, params config.Argon2Config) *CodeHasher {
	if params.Time == 0 {
		params.Time = 1
	}
	if params.Memory == 0 {
		params.Memory = 64 * 1024
	}
	if params.Threads == 0 {
		params.Threads = 4
	}
	if params.KeyLength == 0 {
		params.KeyLength = 32
	}
	return &CodeHasher{pepper: pepper, params: params}
}

func (h *CodeHasher) Hash(mobile, code string) string {
	salt := []byte(h.pepper + ":" + mobile)
	key := argon2.IDKey([]byte(code), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLength)
	return base64.RawStdEncoding.EncodeToString(key)
}

// Matches compares in constant time.
func (h *CodeHasher) Matches(mobile, code, digest string) bool {
	if digest == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(h.Hash(mobile, code)), []byte(digest)) == 1
}
