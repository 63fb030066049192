package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"authproxy/internal/config"
)

// ErrInvalidToken is returned by a Verifier for any token that fails the
// signature, expiry or issuer check. The classifier decides whether that
// means bypass or deny; it is never surfaced to callers as its own status.
var ErrInvalidToken = errors.New("invalid identity token")

// Claims is the identity material extracted from a verified token.
type Claims struct {
	Subject string
	Email   string
}

// Verifier checks identity-provider tokens. Implementations must wrap all
// verification failures in ErrInvalidToken.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type idTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HMAC-signed identity tokens with an optional issuer
// restriction.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(cfg config.VerifierConfig) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &idTokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(msgUnexpectedSigningMethod, token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf(msgTokenParseFailed, ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*idTokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf(msgInvalidTokenClaims, ErrInvalidToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf(msgMissingSubjectClaim, ErrInvalidToken)
	}

	return &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}
