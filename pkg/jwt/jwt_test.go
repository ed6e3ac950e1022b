package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := Generate("secreto", "u1", "h1", "HUB", "hub-inventory", 5)
	require.NoError(t, err)

	claims, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "h1", claims.HubID)
	assert.Equal(t, "HUB", claims.Role)
	assert.Equal(t, "hub-inventory", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("secreto", "u1", "", "ADMIN", "x", 5)
	require.NoError(t, err)

	_, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := Generate("secreto", "u1", "", "ADMIN", "x", -1)
	require.NoError(t, err)

	_, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "u1", "", "ADMIN", "x", 5)
	assert.Error(t, err)
}
