package qrlogin

import (
	"bytes"
	"encoding/json"
	"testing"

	"storefront/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	gen := New(nil)

	png, payload, err := gen.Generate()
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	assert.Equal(t, "sign_in", payload.Type)
	_, err = uuid.Parse(payload.Nonce)
	assert.NoError(t, err, "nonce must be a valid uuid")
}

func TestGenerator_FreshNoncePerCode(t *testing.T) {
	gen := New(&config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "H"})

	_, first, err := gen.Generate()
	require.NoError(t, err)
	_, second, err := gen.Generate()
	require.NoError(t, err)

	assert.NotEqual(t, first.Nonce, second.Nonce)
}

func TestParse_RoundTrip(t *testing.T) {
	gen := New(nil)
	_, payload, err := gen.Generate()
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	parsed, err := Parse(string(raw))
	require.NoError(t, err)
	assert.Equal(t, payload, parsed)
}

func TestParse_RejectsWrongType(t *testing.T) {
	_, err := Parse(`{"nonce":"abc","type":"password_reset"}`)
	assert.Error(t, err)
}

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := Parse("not json")
	assert.Error(t, err)
}
