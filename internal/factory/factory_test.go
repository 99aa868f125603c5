package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/model"
)

func TestNewStore_SQLite(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "journals.db")

	st, err := NewStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	entries, err := st.Entries().ListBetween(context.Background(), mustDate(t, "2024-01-01"), mustDate(t, "2024-12-31"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewStore_Errors(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = config.DriverPostgres
	cfg.PostgresDSN = ""
	_, err := NewStore(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "POSTGRES_DSN is required")

	cfg.DBDriver = "mysql"
	_, err = NewStore(context.Background(), cfg, zerolog.Nop())
	assert.EqualError(t, err, "unknown DB_DRIVER: mysql")
}

func TestNewBackend(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.LLMBackend = config.BackendOllama
	b, err := NewBackend(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "ollama", b.Name())

	cfg.LLMBackend = config.BackendGemini
	cfg.GeminiAPIKey = ""
	_, err = NewBackend(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg.LLMBackend = "openai"
	_, err = NewBackend(context.Background(), cfg, zerolog.Nop())
	assert.EqualError(t, err, "unknown LLM_BACKEND: openai")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}
