package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/PaulBabatuyi/roomChat-gRPC/internal/normalize"
)

// defaultKid names the single key of a manager built by NewJWTManager.
const defaultKid = "default"

var (
	ErrUnknownKey   = errors.New("unknown signing key")
	ErrInvalidToken = errors.New("invalid token")
)

// JWTManager signs and validates the session tokens used by the API. It may
// hold several HMAC keys so that tokens signed before a rotation stay valid.
type JWTManager struct {
	keys      map[string][]byte
	activeKid string
	duration  time.Duration
	now       func() time.Time
}

// Claims is the token payload: the session user.
type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTManager returns a manager with a single signing key.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return NewJWTManagerFromKeys(map[string]string{defaultKid: secretKey}, defaultKid, duration)
}

// NewJWTManagerFromKeys returns a manager that signs with keys[activeKid] and
// verifies with whichever key the token's kid header names. If activeKid is
// empty or unknown, the lexically smallest kid is used.
func NewJWTManagerFromKeys(keys map[string]string, activeKid string, duration time.Duration) *JWTManager {
	m := &JWTManager{
		keys:     make(map[string][]byte, len(keys)),
		duration: duration,
		now:      time.Now,
	}
	for kid, secret := range keys {
		m.keys[kid] = []byte(secret)
		if m.activeKid == "" || kid < m.activeKid {
			m.activeKid = kid
		}
	}
	if _, ok := m.keys[activeKid]; ok {
		m.activeKid = activeKid
	}
	return m
}

// GenerateToken issues a signed token for a user. The email is stored normalized.
func (m *JWTManager) GenerateToken(userID, email, displayName string) (string, time.Time, error) {
	key, ok := m.keys[m.activeKid]
	if !ok {
		return "", time.Time{}, ErrUnknownKey
	}
	now := m.now()
	expiresAt := now.Add(m.duration)

	claims := &Claims{
		UserID:      userID,
		Email:       normalize.Email(email),
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.activeKid

	signed, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// reject asymmetric or "none" algorithms outright
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			kid = defaultKid
		}
		key, ok := m.keys[kid]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, kid)
		}
		return key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
