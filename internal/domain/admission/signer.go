package admission

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	passIssuer     = "club-pass"
	DefaultPassTTL = 90 * 24 * time.Hour
)

// PassSigner issues and verifies the signed payloads embedded in member QR
// codes. A bare card number is never accepted as a scan payload; the HMAC
// binding is what stops a guessed number from working as a credential.
type PassSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewPassSigner(secret string, ttl time.Duration) (*PassSigner, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if ttl <= 0 {
		ttl = DefaultPassTTL
	}
	return &PassSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (p *PassSigner) Issue(cardNumber string) (string, error) {
	cardNumber = strings.TrimSpace(cardNumber)
	if cardNumber == "" {
		return "", fmt.Errorf("card number is required")
	}

	now := p.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    passIssuer,
		Subject:   cardNumber,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign pass: %w", err)
	}
	return signed, nil
}

// Verify returns the card number a payload is bound to, or
// ErrPayloadInvalid for anything tampered, forged or expired.
func (p *PassSigner) Verify(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrPayloadInvalid
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(payload, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(passIssuer), jwt.WithTimeFunc(func() time.Time { return p.now() }))
	if err != nil || !token.Valid {
		return "", ErrPayloadInvalid
	}
	if claims.Subject == "" {
		return "", ErrPayloadInvalid
	}

	return claims.Subject, nil
}
