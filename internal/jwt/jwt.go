package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims access token claims. UserID travels as "userId", the claim the
// account service signs.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Service HS256 token validation against the shared secret
type Service struct {
	secretKey    []byte
	accessExpire time.Duration
	issuer       string
}

// NewService creates the JWT service
func NewService(secretKey string, accessExpire time.Duration, issuer string) *Service {
	return &Service{
		secretKey:    []byte(secretKey),
		accessExpire: accessExpire,
		issuer:       issuer,
	}
}

// GenerateAccessToken signs a token for userID. Login lives in the account
// service; this is what it produces.
func (s *Service) GenerateAccessToken(userID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessExpire)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateAccessToken verifies signature and expiry
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
