// Package token signs and verifies the HS256 JWTs used as bearer
// credentials and as realtime channel grants.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autodealer/showroom/internal/core/domain"
)

const (
	defaultTTL        = 7 * 24 * time.Hour
	channelTokenTTL   = 5 * time.Minute
	channelTokenUsage = "channel"
)

// Claims is the bearer token body.
type Claims struct {
	Role  domain.Role `json:"role"`
	Usage string      `json:"use,omitempty"`
	jwt.RegisteredClaims
}

// Codec implements ports.TokenCodec and ports.ChannelTokens.
type Codec struct {
	secret        []byte
	channelSecret []byte
	ttl           time.Duration
	now           func() time.Time
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Codec{secret: []byte(secret), channelSecret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithChannelSecret signs channel grants with a key separate from the
// bearer-token key.
func (c *Codec) WithChannelSecret(secret string) *Codec {
	if secret != "" {
		c.channelSecret = []byte(secret)
	}
	return c
}

func (c *Codec) Encode(subjectID string, role domain.Role) (string, error) {
	if subjectID == "" {
		return "", errors.New("token: empty subject")
	}
	now := c.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode never panics; every failure collapses to false.
func (c *Codec) Decode(raw string) (domain.Principal, bool) {
	claims, ok := c.parse(raw, c.secret)
	if !ok || claims.Usage != "" {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: claims.Subject, Role: claims.Role}, true
}

// IssueChannel grants p access to one channel for a few minutes.
func (c *Codec) IssueChannel(p domain.Principal, channel string) (string, error) {
	now := c.now()
	claims := Claims{
		Role:  p.Role,
		Usage: channelTokenUsage,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Audience:  jwt.ClaimStrings{channel},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(channelTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.channelSecret)
}

func (c *Codec) VerifyChannel(raw, channel string) (domain.Principal, bool) {
	claims, ok := c.parse(raw, c.channelSecret, jwt.WithAudience(channel))
	if !ok || claims.Usage != channelTokenUsage {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: claims.Subject, Role: claims.Role}, true
}

func (c *Codec) parse(raw string, key []byte, extra ...jwt.ParserOption) (*Claims, bool) {
	if raw == "" {
		return nil, false
	}
	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}, extra...)

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, false
	}
	if claims.Subject == "" || !domain.IsValidRole(claims.Role) {
		return nil, false
	}
	return claims, true
}
