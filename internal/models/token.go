package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token is the backend's sign-in response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenDetails are claims peeked from an access token for display purposes.
// The client never verifies the signature; the token is opaque as far as
// request authorization is concerned.
type TokenDetails struct {
	Subject   string
	ExpiresAt *time.Time
	IssuedAt  *time.Time
}

// InspectToken extracts displayable claims from a JWT-shaped access token.
// Tokens that do not parse as JWTs yield nil details and no error; an opaque
// token is still a valid token.
func InspectToken(raw string) *TokenDetails {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}

	details := &TokenDetails{}
	if sub, err := claims.GetSubject(); err == nil {
		details.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		details.ExpiresAt = &t
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		details.IssuedAt = &t
	}
	return details
}
