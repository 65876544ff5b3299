// Package sessions resolves the signed-in application user from a request. Sessions are
// issued elsewhere; this package only verifies them.
package sessions

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Resolver yields the active user id for a request, if any.
type Resolver interface {
	ActiveUserID(r *http.Request) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) (string, bool)

func (f ResolverFunc) ActiveUserID(r *http.Request) (string, bool) {
	return f(r)
}

// JWTResolver accepts an HS256 session token from the session cookie or a bearer
// Authorization header. The token's subject is the user id.
type JWTResolver struct {
	secret     []byte
	cookieName string
	issuer     string
	nowFunc    func() time.Time
}

var _ Resolver = (*JWTResolver)(nil)

func NewJWTResolver(secret, cookieName, issuer string) *JWTResolver {
	return &JWTResolver{
		secret:     []byte(secret),
		cookieName: cookieName,
		issuer:     issuer,
		nowFunc:    time.Now,
	}
}

// WithNowFunc replaces the clock used for expiry checks.
func (j *JWTResolver) WithNowFunc(now func() time.Time) *JWTResolver {
	j.nowFunc = now
	return j
}

func (j *JWTResolver) ActiveUserID(r *http.Request) (string, bool) {
	raw := j.rawToken(r)
	if raw == "" {
		return "", false
	}

	userID, err := j.Verify(raw)
	if err != nil {
		return "", false
	}
	return userID, true
}

// Verify checks the signature and expiry and returns the subject.
func (j *JWTResolver) Verify(raw string) (string, error) {
	if len(j.secret) == 0 {
		return "", errors.New("session secret not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.nowFunc),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, j.verificationKey, opts...)
	if err != nil {
		return "", errors.Wrap(err, "invalid session token")
	}
	if !token.Valid {
		return "", errors.New("invalid session token")
	}
	if claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	return claims.Subject, nil
}

// Issue signs a session token for userID. Used by the dev tooling and tests.
func (j *JWTResolver) Issue(userID string, ttl time.Duration) (string, error) {
	if len(j.secret) == 0 {
		return "", errors.New("session secret not configured")
	}

	now := j.nowFunc()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}
	return signed, nil
}

func (j *JWTResolver) verificationKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return j.secret, nil
}

func (j *JWTResolver) rawToken(r *http.Request) string {
	if cookie, err := r.Cookie(j.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
