package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap/zaptest"
)

func TestResolveCredential(t *testing.T) {
	keyring.MockInit()
	log := zaptest.NewLogger(t).Sugar()

	t.Run("missing entry leaves password empty", func(t *testing.T) {
		cfg := Config{Mail: Mail{SenderAddress: "nobody@example.com"}}
		require.NoError(t, cfg.ResolveCredential(log))
		assert.Empty(t, cfg.Mail.Password)
	})

	t.Run("keyring entry is used", func(t *testing.T) {
		require.NoError(t, StoreCredential("me@example.com", "from-keyring"))
		cfg := Config{Mail: Mail{SenderAddress: "me@example.com"}}
		require.NoError(t, cfg.ResolveCredential(log))
		assert.Equal(t, "from-keyring", cfg.Mail.Password)
	})

	t.Run("configured password wins", func(t *testing.T) {
		cfg := Config{Mail: Mail{SenderAddress: "me@example.com", Password: "from-env"}}
		require.NoError(t, cfg.ResolveCredential(log))
		assert.Equal(t, "from-env", cfg.Mail.Password)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		require.NoError(t, DeleteCredential("me@example.com"))
		cfg := Config{Mail: Mail{SenderAddress: "me@example.com"}}
		require.NoError(t, cfg.ResolveCredential(log))
		assert.Empty(t, cfg.Mail.Password)
	})
}

func TestStoreCredential_Validation(t *testing.T) {
	keyring.MockInit()

	assert.Error(t, StoreCredential("", "secret"))
	assert.Error(t, StoreCredential("me@example.com", ""))
	assert.Error(t, DeleteCredential(""))
}
