package myjwt_test

import (
	"testing"

	"ChatDesk/internal/config"
	"ChatDesk/pkg/util/myjwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := myjwt.NewSigner(config.JwtConfig{Key: "secret", ExpireHours: 1})

	tok, err := s.GenerateToken("T0000000000000000001", "Alice")
	require.NoError(t, err)

	claims, err := s.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "T0000000000000000001", claims.TenantId)
	assert.Equal(t, "Alice", claims.AgentName)
}

func TestSigner_RejectsForeignKey(t *testing.T) {
	a := myjwt.NewSigner(config.JwtConfig{Key: "one"})
	b := myjwt.NewSigner(config.JwtConfig{Key: "two"})

	tok, err := a.GenerateToken("T1", "")
	require.NoError(t, err)
	_, err = b.ParseToken(tok)
	assert.Error(t, err)
}

func TestSigner_EmptyKey(t *testing.T) {
	s := myjwt.NewSigner(config.JwtConfig{})
	_, err := s.GenerateToken("T1", "")
	assert.ErrorIs(t, err, myjwt.ErrEmptyKey)
}
