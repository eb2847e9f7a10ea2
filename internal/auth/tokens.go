package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/libtrary/libtrary/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Tokens issues and validates the three token kinds the service uses:
// access and refresh tokens (expiry embedded as an exp claim, separate
// secrets) and single-purpose confirmation tokens (email claim plus
// issued-at; the age limit is enforced at verification time).
type Tokens struct {
	cfg config.Auth
}

// NewTokens creates a token issuer/validator from auth configuration.
func NewTokens(cfg config.Auth) *Tokens {
	return &Tokens{cfg: cfg}
}

// IssueAccessToken creates a signed access token for the subject.
func (t *Tokens) IssueAccessToken(subject string) (string, error) {
	return issueExpiringToken(subject, t.cfg.AccessTokenLifetime, t.cfg.JWTSecretKey)
}

// IssueRefreshToken creates a signed refresh token for the subject.
func (t *Tokens) IssueRefreshToken(subject string) (string, error) {
	return issueExpiringToken(subject, t.cfg.RefreshTokenLifetime, t.cfg.JWTRefreshSecretKey)
}

// ParseAccessToken validates an access token and returns its subject.
func (t *Tokens) ParseAccessToken(tokenString string) (string, error) {
	return parseExpiringToken(tokenString, t.cfg.JWTSecretKey)
}

// ParseRefreshToken validates a refresh token and returns its subject.
func (t *Tokens) ParseRefreshToken(tokenString string) (string, error) {
	return parseExpiringToken(tokenString, t.cfg.JWTRefreshSecretKey)
}

// IssueConfirmationToken creates a signed token carrying the email address,
// used to prove control of that address for activation or staff escalation.
func (t *Tokens) IssueConfirmationToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.SecretKey))
}

// VerifyConfirmationToken validates a confirmation token and returns the
// email it carries. Tokens older than the configured max age are rejected.
func (t *Tokens) VerifyConfirmationToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte(t.cfg.SecretKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	issuedAt, ok := claims["iat"].(float64)
	if !ok {
		return "", ErrInvalidToken
	}
	if time.Since(time.Unix(int64(issuedAt), 0)) > t.cfg.ConfirmationMaxAge {
		return "", ErrTokenExpired
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}

func issueExpiringToken(subject string, lifetime time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(lifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseExpiringToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
