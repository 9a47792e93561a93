package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"foodgram-backend/domain"
	"foodgram-backend/internal/utils"

	"github.com/golang-jwt/jwt/v4"
)

// ErrEmptySecret is returned when no signing secret is configured.
var ErrEmptySecret = errors.New("jwt secret is not configured")

const (
	PurposeAuth          = "auth"
	PurposePasswordReset = "password_reset"
)

type (
	JWTService interface {
		GenerateTokenUser(userID uint) (string, error)
		ValidateTokenUser(token string) (*jwt.Token, error)
		GetUserIDByToken(token string) (uint, error)
		GenerateTokenForgetPassword(data map[string]any, duration time.Duration) (string, error)
		ValidateTokenForgetPassword(token string) (jwt.MapClaims, error)
	}

	jwtUserClaim struct {
		UserID  uint   `json:"user_id"`
		Purpose string `json:"purpose"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		ttl       time.Duration
	}
)

// NewJWTService reads JWT_SECRET and JWT_TTL_MINUTES. A blank secret is an
// error so the server never signs with an empty key.
func NewJWTService() (JWTService, error) {
	utils.LoadConfig()
	secret := utils.GetConfig("JWT_SECRET")
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	ttl := time.Duration(utils.GetConfigInt("JWT_TTL_MINUTES", 1440)) * time.Minute
	return NewJWTServiceWithSecret(secret, ttl), nil
}

func NewJWTServiceWithSecret(secretKey string, ttl time.Duration) JWTService {
	return &jwtService{
		secretKey: secretKey,
		issuer:    "FOODGRAM",
		ttl:       ttl,
	}
}

func (j *jwtService) GenerateTokenUser(userID uint) (string, error) {
	if j.secretKey == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := jwtUserClaim{
		UserID:  userID,
		Purpose: PurposeAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	if j.secretKey == "" {
		return nil, ErrEmptySecret
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenUser(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtUserClaim{}, j.parseToken)
}

func (j *jwtService) GetUserIDByToken(token string) (uint, error) {
	t_Token, err := j.ValidateTokenUser(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domain.ErrTokenExpired
		}
		return 0, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return 0, domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(*jwtUserClaim)
	if !ok || claims.Purpose != PurposeAuth || claims.UserID == 0 {
		return 0, domain.ErrTokenInvalid
	}
	return claims.UserID, nil
}

func (j *jwtService) GenerateTokenForgetPassword(data map[string]any, duration time.Duration) (string, error) {
	if j.secretKey == "" {
		return "", ErrEmptySecret
	}
	claims := jwt.MapClaims{}

	for key, value := range data {
		claims[key] = value
	}

	claims["purpose"] = PurposePasswordReset
	claims["exp"] = time.Now().Add(duration).Unix()
	claims["iat"] = time.Now().Unix()
	claims["iss"] = j.issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) ValidateTokenForgetPassword(token string) (jwt.MapClaims, error) {
	t_Token, err := jwt.Parse(token, j.parseToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != PurposePasswordReset {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
