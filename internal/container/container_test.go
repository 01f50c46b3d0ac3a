package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lora/internal/config"
	"lora/internal/errors"
	"lora/internal/session"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", GinMode: "test"},
		Profiling: config.ProfilingConfig{Port: "0"},
		Cache: config.CacheConfig{
			Backend: config.CacheBackendMemory,
			TTL:     time.Minute,
		},
		Parser: config.ParserConfig{JavaBin: "java", Timeout: time.Second},
		Analysis: config.AnalysisConfig{
			TestType:    "fisher",
			Alternative: "greater",
			Correction:  "fdr_bh",
			Alpha:       0.05,
			FilterCount: 1,
		},
	}
}

func TestNewMemoryBackend(t *testing.T) {
	c, err := New(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.IsType(t, &session.MemoryCache{}, c.Cache)
	assert.Nil(t, c.Health)
	assert.Nil(t, c.Normalizer)
	assert.NotNil(t, c.Server)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewWiresNormalizerWhenJarConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Parser.JarPath = "/opt/goslin/cli.jar"

	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.NotNil(t, c.Normalizer)
}

func TestNewRejectsInvalidAnalysisDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Correction = "sidak"

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestShutdownIsIdempotent(t *testing.T) {
	c, err := New(context.Background(), testConfig(), nil)
	require.NoError(t, err)

	assert.NoError(t, c.Shutdown(context.Background()))
	assert.NoError(t, c.Shutdown(context.Background()))
}
