package infrastructure

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	jwtlib "github.com/dgrijalva/jwt-go"
	"github.com/dgrijalva/jwt-go/request"
)

// TokenManager issues HS256 bearer tokens whose only identity claim is the user id.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(userID uint) (string, error) {
	now := m.now()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.StandardClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a raw token string and returns the user id it carries.
func (m *TokenManager) Verify(raw string) (uint, error) {
	claims := &jwtlib.StandardClaims{}
	token, err := jwtlib.ParseWithClaims(raw, claims, m.keyFunc)
	if err != nil {
		return 0, err
	}
	return m.subject(token, claims)
}

// FromRequest reads the token from the Authorization header (Bearer) or the
// access_token argument.
func (m *TokenManager) FromRequest(r *http.Request) (uint, error) {
	claims := &jwtlib.StandardClaims{}
	token, err := request.ParseFromRequestWithClaims(r, request.OAuth2Extractor, claims, m.keyFunc)
	if err != nil {
		return 0, err
	}
	return m.subject(token, claims)
}

func (m *TokenManager) keyFunc(token *jwtlib.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return m.secret, nil
}

func (m *TokenManager) subject(token *jwtlib.Token, claims *jwtlib.StandardClaims) (uint, error) {
	if !token.Valid {
		return 0, fmt.Errorf("token is not valid")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("token subject is not a user id")
	}
	return uint(id), nil
}
