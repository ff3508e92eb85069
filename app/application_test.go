package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDisplayer(t *testing.T) {
	t.Run("MaskString", func(t *testing.T) {
		displayer := NewConfigDisplayer()

		assert.Equal(t, "****", displayer.maskString("abc"))
		assert.Equal(t, "****", displayer.maskString(""))

		masked := displayer.maskString("verylongpassword")
		assert.Len(t, masked, len("verylongpassword"))
		assert.Equal(t, "very************", masked)
	})

	t.Run("IsSensitive", func(t *testing.T) {
		displayer := NewConfigDisplayer()

		assert.True(t, displayer.isSensitive("REDIS_PASSWORD"))
		assert.True(t, displayer.isSensitive("API_KEY"))
		assert.True(t, displayer.isSensitive("SECRET"))
		assert.True(t, displayer.isSensitive("db_password"))

		assert.False(t, displayer.isSensitive("SERVER_PORT"))
		assert.False(t, displayer.isSensitive("REDIS_ADDR"))
		assert.False(t, displayer.isSensitive("CACHE_MAX_ENTRIES"))
	})

	t.Run("PrintAllEnvVars", func(t *testing.T) {
		require.NoError(t, os.Setenv("TEST_VAR", "test_value"))
		require.NoError(t, os.Setenv("TEST_PASSWORD", "secret_value"))
		defer func() {
			_ = os.Unsetenv("TEST_VAR")
			_ = os.Unsetenv("TEST_PASSWORD")
		}()

		assert.NotPanics(t, func() {
			NewConfigDisplayer().PrintAllEnvVars()
		})
	})
}

func TestApplicationLifecycle(t *testing.T) {
	t.Run("ShutdownWithNilDependencies", func(t *testing.T) {
		app := &Application{}

		assert.NotPanics(t, func() {
			err := app.Shutdown()
			assert.NoError(t, err)
		})
	})

	t.Run("ConfigGetter", func(t *testing.T) {
		app := &Application{}
		assert.Nil(t, app.Config())
	})
}
