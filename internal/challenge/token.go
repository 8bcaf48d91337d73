package challenge

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Invite tokens let a challenge link be shared without exposing the raw
// challenge record: "challengeID.expiresUnix.sig", signed with the
// service secret.

func MintToken(secret, challengeID string, ttl time.Duration) string {
	exp := time.Now().Add(ttl).Unix()
	payload := fmt.Sprintf("%s.%d", challengeID, exp)
	return payload + "." + sign(secret, payload)
}

// ValidateToken checks signature and expiry, returning the challenge ID.
func ValidateToken(secret, token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed token")
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(sign(secret, payload)), []byte(parts[2])) {
		return "", fmt.Errorf("signature mismatch")
	}

	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid expiry: %w", err)
	}
	if time.Now().Unix() > exp {
		return "", fmt.Errorf("token expired")
	}

	return parts[0], nil
}

func sign(secret, payload string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
