package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// inviteAlphabet omits characters that are easy to misread (0/O, 1/I/L).
const inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 8

// GenerateInviteCode returns a workspace invite code in the form XXXX-XXXX.
func GenerateInviteCode() (string, error) {
	code := make([]byte, 0, inviteCodeLength+1)
	max := big.NewInt(int64(len(inviteAlphabet)))

	for i := 0; i < inviteCodeLength; i++ {
		if i == inviteCodeLength/2 {
			code = append(code, '-')
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		code = append(code, inviteAlphabet[n.Int64()])
	}

	return string(code), nil
}
