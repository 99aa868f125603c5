package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "LLM_BACKEND", "OLLAMA_MODEL", "HTTP_PORT", "SQLITE_PATH"} {
		t.Setenv(EnvPrefix+"_"+k, "")
		_ = os.Unsetenv(EnvPrefix + "_" + k)
	}

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, BackendOllama, cfg.LLMBackend)
	assert.Equal(t, "llama3.2", cfg.OllamaModel)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "data/journals.db", cfg.SQLitePath)
	assert.Equal(t, ":8000", cfg.GetHTTPAddr())
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	t.Setenv("JOURNAL_OLLAMA_MODEL", "mistral")
	t.Setenv("JOURNAL_HTTP_PORT", "9001")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.Equal(t, 9001, cfg.HTTPPort)
}

func TestConfigLoad_GeminiRequiresKey(t *testing.T) {
	t.Setenv("JOURNAL_LLM_BACKEND", "gemini")
	t.Setenv("JOURNAL_GEMINI_API_KEY", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	t.Setenv("JOURNAL_GEMINI_API_KEY", "k")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, BackendGemini, cfg.LLMBackend)
}

func TestResolveDefaults_Validation(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "mysql"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.DBDriver = "postgres"
	assert.Error(t, cfg.ResolveDefaults(), "postgres without DSN must fail")

	cfg = NewForTesting()
	cfg.DBDriver = "AUTO"
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, DriverSQLite, cfg.DBDriver)

	cfg = NewForTesting()
	cfg.LLMBackend = "openai"
	assert.Error(t, cfg.ResolveDefaults())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JOURNAL_TEST_DOTENV_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("JOURNAL_TEST_DOTENV_VALUE") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("JOURNAL_TEST_DOTENV_VALUE"))

	// missing files are not an error
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
