package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the session JWT authenticator.
type JWTConfig struct {
	// Issuer is the expected token issuer (iss claim).
	// Supabase issues tokens as https://<project>.supabase.co/auth/v1.
	Issuer string

	// Audience is the expected token audience (aud claim).
	// Default: "authenticated"
	Audience string

	// HeaderName is the header containing the token.
	// Default: "Authorization"
	HeaderName string

	// TokenPrefix is the prefix before the token in the header.
	// Default: "Bearer "
	TokenPrefix string

	// UserIDClaim is the claim containing the user id.
	// Default: "sub"
	UserIDClaim string

	// Leeway tolerates clock skew when checking exp/iat/nbf.
	Leeway time.Duration
}

// KeyProvider retrieves signing keys for JWT validation.
type KeyProvider interface {
	// GetKey returns the key for the given key ID.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider provides a static HMAC signing key.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a static key provider.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

// JWTAuthenticator validates session JWTs.
type JWTAuthenticator struct {
	config      JWTConfig
	keyProvider KeyProvider
	parser      *jwt.Parser
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(config JWTConfig, keyProvider KeyProvider) *JWTAuthenticator {
	// Apply defaults
	if config.Audience == "" {
		config.Audience = "authenticated"
	}
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.TokenPrefix == "" {
		config.TokenPrefix = "Bearer "
	}
	if config.UserIDClaim == "" {
		config.UserIDClaim = "sub"
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "ES256"}),
		jwt.WithAudience(config.Audience),
		jwt.WithIssuedAt(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(config.Leeway))
	}

	return &JWTAuthenticator{
		config:      config,
		keyProvider: keyProvider,
		parser:      jwt.NewParser(opts...),
	}
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string {
	return "jwt"
}

// Supports returns true if the request carries a bearer token.
func (a *JWTAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	header := req.GetHeader(a.config.HeaderName)
	return strings.HasPrefix(header, a.config.TokenPrefix)
}

// Authenticate validates the token and builds the caller's identity.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	header := req.GetHeader(a.config.HeaderName)
	tokenString, found := strings.CutPrefix(header, a.config.TokenPrefix)
	tokenString = strings.TrimSpace(tokenString)
	if !found || tokenString == "" {
		return AuthFailure(ErrMissingCredentials), nil
	}

	claims := jwt.MapClaims{}
	token, err := a.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		return a.keyProvider.GetKey(ctx, kid)
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return AuthFailure(ErrTokenExpired), nil
		case errors.Is(err, jwt.ErrTokenMalformed):
			return AuthFailure(ErrTokenMalformed), nil
		default:
			return AuthFailure(ErrInvalidCredentials), nil
		}
	}
	if !token.Valid {
		return AuthFailure(ErrInvalidCredentials), nil
	}

	identity := a.buildIdentity(claims)
	if identity.UserID == "" {
		return AuthFailure(ErrInvalidCredentials), nil
	}
	return AuthSuccess(identity), nil
}

func (a *JWTAuthenticator) buildIdentity(claims jwt.MapClaims) *Identity {
	identity := &Identity{
		Method: AuthMethodJWT,
		Claims: make(map[string]any, len(claims)),
	}

	// Copy claims
	for k, v := range claims {
		identity.Claims[k] = v
	}

	if userID, ok := claims[a.config.UserIDClaim].(string); ok {
		identity.UserID = userID
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}

	return identity
}

// Ensure JWTAuthenticator implements Authenticator
var _ Authenticator = (*JWTAuthenticator)(nil)

// Ensure StaticKeyProvider implements KeyProvider
var _ KeyProvider = (*StaticKeyProvider)(nil)
