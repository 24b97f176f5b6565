// Package auth verifies bearer tokens and provisions application users on
// first sight. Tokens are HS256-signed JWTs carrying the provider subject,
// an optional email and a roles claim.
package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/easysks/easysks/internal/apperr"
	"github.com/easysks/easysks/internal/domain"
)

// Claims is the token payload the backend understands. Unknown roles are
// dropped during parsing, not rejected.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
	Email string   `json:"email,omitempty"`
}

// Verifier checks token signatures and extracts the authenticated identity.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// VerifierOption customizes token validation.
type VerifierOption func(*verifierConfig)

type verifierConfig struct {
	issuer   string
	audience string
}

// WithIssuer requires the iss claim to match.
func WithIssuer(issuer string) VerifierOption {
	return func(c *verifierConfig) { c.issuer = issuer }
}

// WithAudience requires the aud claim to contain the value.
func WithAudience(audience string) VerifierOption {
	return func(c *verifierConfig) { c.audience = audience }
}

// NewVerifier builds a Verifier for the given shared secret.
func NewVerifier(secret string, opts ...VerifierOption) *Verifier {
	var cfg verifierConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.issuer))
	}
	if cfg.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.audience))
	}

	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(parserOpts...),
	}
}

// Verify parses and validates a raw token string. Any failure maps to an
// unauthorized error; callers never learn which check failed.
func (v *Verifier) Verify(raw string) (domain.AuthenticatedUser, error) {
	var claims Claims
	token, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.AuthenticatedUser{}, apperr.Unauthorized("invalid_token", "token validation failed: %v", err)
	}
	if !token.Valid {
		return domain.AuthenticatedUser{}, apperr.Unauthorized("invalid_token", "token is not valid")
	}
	if claims.Subject == "" {
		return domain.AuthenticatedUser{}, apperr.Unauthorized("invalid_token", "token has no subject")
	}

	var roles []domain.Role
	for _, raw := range claims.Roles {
		if role, ok := domain.ParseRole(raw); ok {
			roles = append(roles, role)
		}
	}

	return domain.AuthenticatedUser{
		SubjectID: claims.Subject,
		Roles:     roles,
		Email:     claims.Email,
	}, nil
}
