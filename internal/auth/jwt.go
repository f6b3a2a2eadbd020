package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mmynk/rachadinha/internal/models"
)

// Issuer is stamped on every token and required on validation.
const Issuer = "rachadinha"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// JWTManager signs and checks the HS256 tokens returned by Register and Login.
type JWTManager struct {
	secretKey []byte
	ttl       time.Duration
	parser    *jwt.Parser
}

// Claims identify either a registered user or a guest participant.
// The subject is the user ID for users and the participant ID for guests.
type Claims struct {
	UserID      string `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`

	// Set on guest tokens only.
	SessionID     string `json:"session_id,omitempty"`
	ParticipantID string `json:"participant_id,omitempty"`

	jwt.RegisteredClaims
}

// IsGuest reports whether the claims belong to a participant who joined
// through an invite instead of logging in.
func (c *Claims) IsGuest() bool {
	return c.UserID == "" && c.ParticipantID != ""
}

// NewJWTManager creates a manager for tokens valid for ttl.
func NewJWTManager(secretKey string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

// Generate signs a token for user.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	return m.sign(&Claims{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, user.ID)
}

// GenerateGuest signs a token for a participant who joined sessionID by invite.
func (m *JWTManager) GenerateGuest(sessionID, participantID string) (string, error) {
	return m.sign(&Claims{SessionID: sessionID, ParticipantID: participantID}, participantID)
}

func (m *JWTManager) sign(claims *Claims, subject string) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims.
// Every failure wraps ErrInvalidToken.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	switch {
	case claims.UserID != "":
		if claims.UserID != claims.Subject || claims.ParticipantID != "" {
			return nil, ErrInvalidToken
		}
	case claims.IsGuest():
		if claims.ParticipantID != claims.Subject || claims.SessionID == "" {
			return nil, ErrInvalidToken
		}
	default:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
