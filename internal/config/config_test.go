package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Equal(t, DefaultScale, cfg.Compile.Scale)
	assert.Equal(t, DefaultEvictionAge, cfg.Compile.EvictionAge)
	assert.True(t, cfg.Fonts.System)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	resetViper(t)

	viper.Set("server.host", "localhost:9000")
	viper.Set("watch.debounce", "250ms")
	viper.Set("compile.scale", 1.5)
	viper.Set("fonts.paths", []string{"/tmp/fonts"})
	viper.Set("fonts.system", false)
	viper.Set("log-level", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Server.Host)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 1.5, cfg.Compile.Scale)
	assert.Equal(t, []string{"/tmp/fonts"}, cfg.Fonts.Paths)
	assert.False(t, cfg.Fonts.System)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidateServerConfig(t *testing.T) {
	testCases := []struct {
		name    string
		host    string
		wantErr bool
	}{
		{"valid loopback", "127.0.0.1:23625", false},
		{"valid hostname", "localhost:8080", false},
		{"missing port", "127.0.0.1", true},
		{"port out of range", "127.0.0.1:70000", true},
		{"shell metacharacter", "local$host:8080", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateServerConfig(&ServerConfig{Host: tc.host})
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	resetViper(t)

	viper.Set("compile.scale", -1.0)
	_, err := Load()
	assert.Error(t, err)

	resetViper(t)
	viper.Set("watch.debounce", "30s")
	_, err = Load()
	assert.Error(t, err)
}
