package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const inviteTokenBytes = 24

// Hasher derives device identities from client-supplied identifiers.
// The salt comes from process configuration; the same id and salt
// always produce the same hash, which is the sole device identity key.
type Hasher struct {
	Salt string
}

func NewHasher(salt string) *Hasher {
	return &Hasher{Salt: salt}
}

// DeviceHash returns the salted one-way hash of a device identifier.
func (h *Hasher) DeviceHash(deviceID string) string {
	return sha256Hex(deviceID + ":" + h.Salt)
}

// TokenHash returns the unsalted verifier stored in place of an
// invite token's plaintext.
func TokenHash(token string) string {
	return sha256Hex(token)
}

// NewInviteToken returns a fresh random invite secret, hex encoded.
func NewInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func sha256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
