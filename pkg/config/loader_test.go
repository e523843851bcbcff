package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/safecheck/pkg/config"
)

type testConfig struct {
	Name    string `env:"TEST_APP_NAME" envDefault:"safecheck"`
	Retries int    `env:"TEST_APP_RETRIES" envDefault:"3"`
}

type otherConfig struct {
	Endpoint string `env:"TEST_OTHER_ENDPOINT" envDefault:"http://localhost"`
}

func TestLoad_AppliesDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "safecheck", cfg.Name)
	assert.Equal(t, 3, cfg.Retries)
}

func TestLoad_CachesPerType(t *testing.T) {
	var first testConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("TEST_APP_NAME", "changed-after-first-load")

	var second testConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second, "second load must come from the cache")
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[testConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("TEST_OTHER_ENDPOINT", "https://example.com")

	var cfg otherConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "https://example.com", cfg.Endpoint)
}

func TestMustLoad(t *testing.T) {
	assert.NotPanics(t, func() {
		var cfg testConfig
		config.MustLoad(&cfg)
	})
}
