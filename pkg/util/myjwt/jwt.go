package myjwt

import (
	"errors"
	"time"

	"ChatDesk/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptyKey = errors.New("jwt key is empty")

// CustomClaims 运营人员令牌，绑定到单个租户
type CustomClaims struct {
	TenantId  string `json:"tenant_id"`
	AgentName string `json:"agent_name"`
	jwt.RegisteredClaims
}

type Signer struct {
	key    []byte
	ttl    time.Duration
	issuer string
}

func NewSigner(conf config.JwtConfig) *Signer {
	hours := conf.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	issuer := conf.Issuer
	if issuer == "" {
		issuer = "ChatDesk"
	}
	return &Signer{key: []byte(conf.Key), ttl: time.Duration(hours) * time.Hour, issuer: issuer}
}

func (s *Signer) GenerateToken(tenantID string, agentName string) (string, error) {
	if len(s.key) == 0 {
		return "", ErrEmptyKey
	}
	now := time.Now()
	claims := CustomClaims{
		TenantId:  tenantID,
		AgentName: agentName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Signer) ParseToken(tokenString string) (*CustomClaims, error) {
	if len(s.key) == 0 {
		return nil, ErrEmptyKey
	}
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.TenantId == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
