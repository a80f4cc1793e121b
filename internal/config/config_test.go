package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(lookupFrom(nil))
	require.NoError(t, err)

	assert.Empty(t, cfg.LogEndpoint)
	assert.Equal(t, 5*time.Second, cfg.SinkTimeout)
	assert.False(t, cfg.SinkGzip)
	assert.Equal(t, []string{"/*"}, cfg.PathPatterns)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.OpsAddr)
	assert.Equal(t, "./public", cfg.StaticDir)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "visitor-logger", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.InstanceID)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse(lookupFrom(map[string]string{
		"LOG_ENDPOINT":  " https://sink.example.com/log ",
		"SINK_TIMEOUT":  "2s",
		"SINK_GZIP":     "true",
		"PATH_PATTERNS": "/, /blog/*, ,/apply",
		"ORIGIN_URL":    "http://origin:3000",
		"LOG_PRETTY":    "1",
		"LOG_SAMPLE_N":  "100",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://sink.example.com/log", cfg.LogEndpoint)
	assert.Equal(t, 2*time.Second, cfg.SinkTimeout)
	assert.True(t, cfg.SinkGzip)
	assert.Equal(t, []string{"/", "/blog/*", "/apply"}, cfg.PathPatterns)
	assert.Equal(t, "http://origin:3000", cfg.OriginURL)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, uint32(100), cfg.LogSampleN)
}

func TestParseBlankEndpointDisablesSink(t *testing.T) {
	cfg, err := Parse(lookupFrom(map[string]string{"LOG_ENDPOINT": "   "}))
	require.NoError(t, err)
	assert.Empty(t, cfg.LogEndpoint)
}

func TestParseInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":      {"SINK_TIMEOUT": "soon"},
		"zero timeout":      {"SINK_TIMEOUT": "0s"},
		"bad bool":          {"SINK_GZIP": "maybe"},
		"negative sample":   {"LOG_SAMPLE_N": "-1"},
		"bad shutdown":      {"SHUTDOWN_TIMEOUT": "-5s"},
		"non numeric count": {"LOG_SAMPLE_N": "ten"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}
