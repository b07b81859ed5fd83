package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultRoundTrip(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))
	key := MailKey("me@example.com")
	assert.Equal(t, "mail-me@example.com", key)

	_, err := v.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, v.Set(key, "hunter2"))
	got, err := v.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, v.Delete(key))
	require.NoError(t, v.Delete(key))
	_, err = v.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
}
