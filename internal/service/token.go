package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medrx_backend/internal/model"
)

// sessionClaims is the JWT payload: the subject id in "sub" plus the account role.
type sessionClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, maxAgeSeconds int) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
		now:    time.Now,
	}
}

// MaxAge returns the token lifetime in seconds.
func (s *TokenService) MaxAge() int {
	return int(s.maxAge / time.Second)
}

func (s *TokenService) Issue(subjectID int64, role model.Role) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and expiry and returns the principal.
func (s *TokenService) Parse(tokenString string) (model.Principal, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Principal{}, model.ErrTokenExpired
		}
		return model.Principal{}, model.ErrTokenInvalid
	}
	if !token.Valid {
		return model.Principal{}, model.ErrTokenInvalid
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return model.Principal{}, model.ErrTokenInvalid
	}
	if claims.Role != model.RoleDoctor && claims.Role != model.RolePatient {
		return model.Principal{}, model.ErrTokenInvalid
	}
	return model.Principal{ID: id, Role: claims.Role}, nil
}

func (s *TokenService) tokenResponse(subjectID int64, role model.Role) (*model.TokenResponse, error) {
	token, err := s.Issue(subjectID, role)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: s.MaxAge(),
		Role:      role,
		SubjectID: subjectID,
	}, nil
}
