package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalize(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Insufficient stock", b.Localize("en-US", "InsufficientStock", "x", nil))
	assert.Equal(t, "Estoque insuficiente", b.Localize("pt-BR,pt;q=0.9", "InsufficientStock", "x", nil))
	assert.Equal(t, "Nenhum produto encontrado para o código 789",
		b.Localize("pt-BR", "BarcodeNotFound", "x", map[string]interface{}{"Code": "789"}))
	assert.Equal(t, "Informe um e-mail válido e uma senha com pelo menos 6 caracteres",
		b.Localize("pt-BR", "WeakCredentials", "x", nil))
	assert.NotEqual(t, b.Localize("en", "InvalidCredentials", "x", nil), b.Localize("en", "WeakCredentials", "x", nil))
}

func TestLocalizeFallsBack(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	assert.Equal(t, "raw", b.Localize("pt-BR", "NoSuchMessage", "raw", nil))
	assert.Equal(t, "raw", b.Localize("pt-BR", "", "raw", nil))
	assert.Equal(t, "Insufficient stock", b.Localize("", "InsufficientStock", "x", nil))

	var nilBundle *Bundle
	assert.Equal(t, "raw", nilBundle.Localize("en", "InsufficientStock", "raw", nil))
}
