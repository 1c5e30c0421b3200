// Package auth verifies bearer tokens and extracts tenant and role claims.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"
)

// Verifier validates tokens in one of two modes:
//   - dev:  token is "tenant:role", no verification (local development)
//   - hmac: HS256 JWT signed with AUTH_HMAC_SECRET
type Verifier struct {
	Mode        string
	HMACSecret  []byte
	TenantClaim string
	RoleClaim   string
}

type Principal struct {
	Tenant string
	Role   string
}

var (
	ErrBadToken     = errors.New("malformed token")
	ErrBadSignature = errors.New("signature mismatch")
	ErrExpired      = errors.New("token expired")
)

func NewVerifierFromEnv() *Verifier {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if mode == "" {
		mode = "dev"
	}
	return &Verifier{
		Mode:        mode,
		HMACSecret:  []byte(os.Getenv("AUTH_HMAC_SECRET")),
		TenantClaim: envOr("AUTH_TENANT_CLAIM", "tenant"),
		RoleClaim:   envOr("AUTH_ROLE_CLAIM", "role"),
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (v *Verifier) Verify(token string) (Principal, error) {
	if v.Mode == "dev" {
		parts := strings.SplitN(token, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Principal{}, ErrBadToken
		}
		return Principal{Tenant: parts[0], Role: parts[1]}, nil
	}
	return v.verifyHS256(token)
}

func (v *Verifier) verifyHS256(token string) (Principal, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Principal{}, ErrBadToken
	}
	signed := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Principal{}, ErrBadToken
	}
	mac := hmac.New(sha256.New, v.HMACSecret)
	mac.Write([]byte(signed))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return Principal{}, ErrBadSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Principal{}, ErrBadToken
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Principal{}, ErrBadToken
	}
	if exp, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(exp) {
			return Principal{}, ErrExpired
		}
	}
	pr := Principal{
		Tenant: stringClaim(claims, v.TenantClaim),
		Role:   stringClaim(claims, v.RoleClaim),
	}
	if pr.Tenant == "" {
		return Principal{}, ErrBadToken
	}
	if pr.Role == "" {
		pr.Role = "viewer"
	}
	return pr, nil
}

func stringClaim(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
