package services

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned by Login for any username or password
// mismatch.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// TokenConfig configures a TokenService. AdminPasswordHash is a bcrypt hash;
// when it is empty Login always fails.
type TokenConfig struct {
	Secret            string
	TTL               time.Duration
	AdminUsername     string
	AdminPasswordHash string
}

// TokenService issues and validates the HS256 tokens that guard catalog
// writes.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	adminUser string
	adminHash []byte
	now       func() time.Time
}

// NewTokenService creates a TokenService. A non-positive TTL falls back to
// 24 hours.
func NewTokenService(cfg TokenConfig) *TokenService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret:    []byte(cfg.Secret),
		ttl:       ttl,
		adminUser: cfg.AdminUsername,
		adminHash: []byte(cfg.AdminPasswordHash),
		now:       time.Now,
	}
}

// HashPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Login checks the admin credentials and returns a token on success.
func (s *TokenService) Login(username, password string) (string, error) {
	if len(s.adminHash) == 0 || s.adminUser == "" {
		return "", ErrInvalidCredentials
	}
	// Compare the password even on a username mismatch so both paths cost
	// the same.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUser)) == 1
	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)); err != nil || !userOK {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(username)
}

// IssueToken returns a signed token for subject.
func (s *TokenService) IssueToken(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject is required")
	}
	issued := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": issued.Add(s.ttl).Unix(),
		"iat": issued.Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token, returning its claims if valid.
func (s *TokenService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
