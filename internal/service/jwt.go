package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"clicker_game/internal/clock"
	"clicker_game/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID int64  `json:"user_id"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken    string
	RefreshToken   string
	RefreshID      string
	RefreshExpires time.Time
}

// TokenService signs and verifies HS256 tokens.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, clk clock.Clock) *TokenService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, clock: clk}
}

func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) GenerateAccess(userID int64) (string, error) {
	tok, _, err := s.sign(userID, tokenTypeAccess, s.accessTTL)
	return tok, err
}

func (s *TokenService) GeneratePair(userID int64) (*TokenPair, error) {
	access, err := s.GenerateAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, claims, err := s.sign(userID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:    access,
		RefreshToken:   refresh,
		RefreshID:      claims.ID,
		RefreshExpires: claims.ExpiresAt.Time,
	}, nil
}

// ParseAccess returns the user id of a valid access token.
func (s *TokenService) ParseAccess(token string) (int64, error) {
	c, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return 0, err
	}
	return c.UserID, nil
}

// ParseRefresh returns the user id and token id of a valid refresh token.
func (s *TokenService) ParseRefresh(token string) (int64, string, error) {
	c, err := s.parse(token, tokenTypeRefresh)
	if err != nil {
		return 0, "", err
	}
	return c.UserID, c.ID, nil
}

func (s *TokenService) sign(userID int64, typ string, ttl time.Duration) (string, *Claims, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID: userID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tok, claims, nil
}

func (s *TokenService) parse(token, typ string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if c.Type != typ || c.UserID == 0 {
		return nil, domain.ErrInvalidToken
	}
	return &c, nil
}
