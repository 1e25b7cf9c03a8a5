package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Environment: "production", OTLPEndpoint: "http://collector:4317/"}.withDefaults()
	assert.Equal(t, defaultSampleRatio, cfg.SampleRatio)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)

	cfg = Config{Environment: "production", SampleRatio: 0.5}.withDefaults()
	assert.Equal(t, 0.5, cfg.SampleRatio)

	cfg = Config{SampleRatio: 0.5}.withDefaults()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 1.0, cfg.SampleRatio)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "localhost:4317", normalizeEndpoint("localhost:4317"))
	assert.Equal(t, "otel:4317", normalizeEndpoint("https://otel:4317"))
}
