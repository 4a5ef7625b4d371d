package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PETMOJI_PORT", "PETMOJI_PUBLIC_URL", "PETMOJI_AI_PROVIDER", "OPENAI_API_KEY",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "PETMOJI_ADMIN_KEY", "PETMOJI_DB_PASSWORD",
		"PETMOJI_MINIO_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte("ai:\n  provider: fixture\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080/", cfg.Server.PublicURL)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, "memory", cfg.Audit.Driver)
	assert.Equal(t, 10000, cfg.Audit.MemoryMaxRecords)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)

	t.Run("OPENAI_API_KEY fills the openai key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "oa-key")
		cfg, err := Parse([]byte("ai:\n  provider: openai\n"))
		require.NoError(t, err)
		assert.Equal(t, "oa-key", cfg.AI.APIKey)
	})

	t.Run("GEMINI_API_KEY fills the gemini key", func(t *testing.T) {
		t.Setenv("PETMOJI_AI_PROVIDER", "gemini")
		t.Setenv("GEMINI_API_KEY", "gm-key")
		cfg, err := Parse([]byte("ai:\n  provider: openai\n"))
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.AI.Provider)
		assert.Equal(t, "gm-key", cfg.AI.APIKey)
	})

	t.Run("file key wins over env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "oa-key")
		cfg, err := Parse([]byte("ai:\n  provider: openai\n  apiKey: from-file\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.AI.APIKey)
	})

	t.Run("port and admin key", func(t *testing.T) {
		t.Setenv("PETMOJI_PORT", "9090")
		t.Setenv("PETMOJI_ADMIN_KEY", "adm")
		cfg, err := Parse([]byte("ai:\n  provider: fixture\n"))
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "adm", cfg.Admin.APIKeys["env"])
	})
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"missing key":        "ai:\n  provider: openai\n",
		"unknown provider":   "ai:\n  provider: llama\n",
		"unknown driver":     "ai:\n  provider: fixture\naudit:\n  driver: mongo\n",
		"mysql no host":      "ai:\n  provider: fixture\naudit:\n  driver: mysql\n",
		"minio no bucket":    "ai:\n  provider: fixture\nminio:\n  enabled: true\n  endpoint: localhost:9000\n",
		"bad public url":     "ai:\n  provider: fixture\nserver:\n  publicURL: ftp://x/\n",
		"negative audit cap": "ai:\n  provider: fixture\naudit:\n  memoryMaxRecords: -1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestDSNs(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "db"
	cfg.Database.Port = 5432
	cfg.Database.User = "pet"
	cfg.Database.Password = "p@ss"
	cfg.Database.Name = "petmoji"
	cfg.Database.SSLMode = "disable"

	assert.Equal(t, "pet:p@ss@tcp(db:5432)/petmoji?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
	assert.Equal(t, "postgres://pet:p%40ss@db:5432/petmoji?sslmode=disable", cfg.PostgresDSN())
}

func TestLoadFileAndPageURL(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 3000
  publicURL: https://petmoji.example/app
ai:
  provider: fixture
  promptVersion: v1
  timeout: 5s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "v1", cfg.AI.PromptVersion)

	u, err := cfg.PageURL()
	require.NoError(t, err)
	assert.Equal(t, "https://petmoji.example/app/", u.String())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
