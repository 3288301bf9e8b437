package driftchat

import (
	"github.com/golang-jwt/jwt/v5"
)

// SelfID extracts the userId claim from a bearer token without verifying
// the signature. The backend signs and validates tokens; the client only
// needs the claim to tell its own messages apart from everyone else's.
func SelfID(token string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", WrapError(CodeUnauthorized, "malformed token", err)
	}
	id, ok := claims["userId"].(string)
	if !ok || id == "" {
		return "", NewError(CodeUnauthorized, "token has no userId claim")
	}
	return id, nil
}
