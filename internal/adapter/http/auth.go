package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"reward-ledger/internal/core/domain"
)

// TokenAuth verifies HS256 bearer tokens and stores their subject as the
// caller of the request. Requests without a token pass through anonymously;
// the ledger rejects anonymous calls to operations that need a principal.
type TokenAuth struct {
	secret    []byte
	issuer    string
	clockSkew time.Duration
	now       func() time.Time
}

func NewTokenAuth(secret, issuer string, clockSkew time.Duration) (*TokenAuth, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth secret not configured")
	}
	return &TokenAuth{
		secret:    []byte(secret),
		issuer:    issuer,
		clockSkew: clockSkew,
		now:       time.Now,
	}, nil
}

// Issue returns a signed token for subject valid for ttl.
func (a *TokenAuth) Issue(subject domain.Address, ttl time.Duration) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses token and returns its subject.
func (a *TokenAuth) Verify(token string) (domain.Address, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return "", err
	}
	subject := domain.ParseAddress(claims.Subject)
	if subject.IsZero() {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := extractBearer(header)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, errors.New("malformed authorization header"))
			return
		}
		caller, err := a.Verify(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, fmt.Errorf("invalid token: %w", err))
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithCaller(r.Context(), caller)))
	})
}

func extractBearer(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
