package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "campuslink"

// Claims is the payload inside every JWT. The registered ID claim (jti)
// identifies the token so sign-out can revoke it.
type Claims struct {
	StudentID uuid.UUID `json:"student_id"`
	Email     string    `json:"email"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller, passed explicitly to every service
// call that acts on behalf of a student.
type Session struct {
	StudentID uuid.UUID
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 tokens with one shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for a student and the session it stands for.
func (i *Issuer) Issue(studentID uuid.UUID, email string) (string, *Session, error) {
	now := i.now()
	session := &Session{
		StudentID: studentID,
		Email:     email,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}

	claims := Claims{
		StudentID: studentID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID,
			Subject:   studentID.String(),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuerName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, session, nil
}

// Parse verifies signature, expiry and signing method, and returns the
// session the token carries.
func (i *Issuer) Parse(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// Reject "none" and asymmetric algorithms.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return i.secret, nil
		},
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.StudentID == uuid.Nil || claims.ID == "" {
		return nil, fmt.Errorf("token is missing student or token id")
	}

	s := &Session{
		StudentID: claims.StudentID,
		Email:     claims.Email,
		TokenID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
