package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenResetCode generates a short human-typable reset code: 6 uppercase hex
// characters from crypto/rand. Coarse entropy on purpose, it is typed from an
// email and only lives for the configured window.
func GenResetCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
