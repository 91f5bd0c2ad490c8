package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated state handed back by Login. Callers keep it
// and pass it along explicitly.
type Session struct {
	User     *user.User `json:"user"`
	IssuedAt time.Time  `json:"issued_at"`
}

func NewSession(u *user.User) *Session {
	return &Session{User: u, IssuedAt: time.Now()}
}

func (s *Session) Actor() internal.Actor {
	return internal.Actor{
		UserID: s.User.ID,
		Email:  s.User.Email,
		Role:   string(s.User.Role),
	}
}

type AuthTokens struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret []byte
	AccessTokenTTL    time.Duration
	now               func() time.Time
}

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrUserNotVerified = errors.New("user is not verified")
)

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret: []byte(secret),
		AccessTokenTTL:    ttl,
		now:               time.Now,
	}
}

func (g *JWTTokenGenerator) GenerateAccessToken(session *Session) (AuthTokens, error) {
	now := g.now()
	expiresAt := now.Add(g.AccessTokenTTL)
	claims := Claims{
		UserID: session.User.ID,
		Email:  session.User.Email,
		Role:   string(session.User.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(session.User.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.AccessTokenSecret)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return AuthTokens{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

func (g *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.AccessTokenSecret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
