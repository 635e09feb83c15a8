package referral

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateCode returns an 8-character uppercase hex referral code.
// Uniqueness is enforced by the store; callers retry on collision.
func GenerateCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
