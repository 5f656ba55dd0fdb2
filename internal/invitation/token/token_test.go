package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/huddle/internal/config"
)

func TestGenerate(t *testing.T) {
	codec := NewCodec(config.Config{InvitationSecret: "secret"})

	first, err := codec.Generate()
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := codec.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashIsKeyedAndDeterministic(t *testing.T) {
	a := NewCodec(config.Config{InvitationSecret: "secret-a"})
	b := NewCodec(config.Config{InvitationSecret: "secret-b"})

	assert.Equal(t, a.Hash("tok"), a.Hash("tok"))
	assert.NotEqual(t, a.Hash("tok"), a.Hash("other"))

	// A different secret yields a different hash for the same token, so
	// rotating the secret invalidates stored invitations.
	assert.NotEqual(t, a.Hash("tok"), b.Hash("tok"))

	// The raw token never appears in its storage form.
	assert.NotContains(t, a.Hash("tok"), "tok")
	assert.Len(t, a.Hash("tok"), 64)
}
