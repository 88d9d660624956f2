package manager

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"todo-api/internal/apperr"
	"todo-api/internal/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    int64  `json:"uid"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer выпускает и проверяет подписанные HS256 токены без серверных сессий
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue выпускает пару access + refresh для пользователя
func (ti *TokenIssuer) Issue(userID int64) (models.TokenPair, error) {
	access, err := ti.sign(userID, TokenTypeAccess, ti.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := ti.sign(userID, TokenTypeRefresh, ti.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{
		Token:        access,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(ti.accessTTL / time.Second),
	}, nil
}

func (ti *TokenIssuer) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := ti.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись, срок действия, издателя и тип токена.
// Любая проблема с токеном возвращается как apperr.ErrUnauthorized.
func (ti *TokenIssuer) Parse(tokenStr, wantType string) (*Claims, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("missing token: %w", apperr.ErrUnauthorized)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return ti.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(ti.issuer),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("expected %s token, got %q: %w", wantType, claims.TokenType, apperr.ErrUnauthorized)
	}
	return claims, nil
}
