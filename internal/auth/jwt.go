package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/clock"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	issuerName      = "bookstore-backoffice"
	secretKeyLength = 32

	// TokenTypeAccess authenticates API calls; TokenTypeRefresh may only be
	// exchanged for a new pair.
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims bind a token to a user and to the secret key the user held at issue
// time; rotating the stored key invalidates every outstanding token.
type Claims struct {
	UserID    int64  `json:"uid"`
	SecretKey string `json:"key"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs and parses tokens with a single system-wide HMAC secret.
type Issuer struct {
	secret []byte
	clock  clock.Clock
}

func NewIssuer(secret string, clk clock.Clock) *Issuer {
	return &Issuer{secret: []byte(secret), clock: clk}
}

func (i *Issuer) IssuePair(userID int64, secretKey string) (TokenPair, error) {
	access, err := i.issue(userID, secretKey, TokenTypeAccess, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.issue(userID, secretKey, TokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) issue(userID int64, secretKey, tokenType string, ttl time.Duration) (string, error) {
	now := i.clock.Now()
	claims := Claims{
		UserID:    userID,
		SecretKey: secretKey,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, expiry and issuer. The per-user secret key
// embedded in the claims still has to be checked against the stored one by
// the caller.
func (i *Issuer) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return Claims{}, domain.ErrTokenInvalid
	}
	if claims.UserID == 0 || claims.SecretKey == "" {
		return Claims{}, domain.ErrTokenInvalid
	}
	return claims, nil
}

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewSecretKey returns a fresh random per-user key, guaranteed different from
// the previous one so rotation always revokes.
func NewSecretKey(differentFrom string) (string, error) {
	for {
		b := make([]byte, secretKeyLength)
		for j := range b {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyAlphabet))))
			if err != nil {
				return "", fmt.Errorf("generate secret key: %w", err)
			}
			b[j] = keyAlphabet[n.Int64()]
		}
		if key := string(b); key != differentFrom {
			return key, nil
		}
	}
}
