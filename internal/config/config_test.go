package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresSecretAndDatabaseURI(t *testing.T) {
	t.Setenv("DATABASE_URI", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URI is required")

	t.Setenv("DATABASE_URI", "postgres://localhost/blog")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is required")
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "8081"
database:
  uri: "postgres://file/blog"
jwt:
  secret: "from-file"
rate_limit:
  auth:
    requests: 5
    window: "1m"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "postgres://file/blog", cfg.Database.URI)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 12, cfg.Password.BcryptCost)
	assert.Equal(t, 5, cfg.RateLimit.Auth.Requests)
	assert.Equal(t, "1m", cfg.RateLimit.Auth.Window)
	// untouched groups keep their defaults
	assert.Equal(t, 200, cfg.RateLimit.General.Requests)
	assert.Equal(t, "24h", cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "@gecidukki.ac.in", cfg.Institution.EmailDomain)
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://localhost/blog")
	t.Setenv("JWT_SECRET", "secret")

	t.Setenv("DB_QUERY_TIMEOUT", "soon")
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database query timeout")

	t.Setenv("DB_QUERY_TIMEOUT", "5s")
	t.Setenv("STORAGE_DRIVER", "s3")
	_, err = LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")

	t.Setenv("STORAGE_DRIVER", "ftp")
	_, err = LoadConfig("")
	require.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("BCRYPT_COST", "ten")
	_, err = LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestConfig_Helpers(t *testing.T) {
	cfg := &Config{}
	cfg.Database.URI = "mongodb+srv://cluster.example/blog"
	assert.True(t, cfg.IsMongoURI())

	cfg.Database.URI = "postgres://localhost/blog"
	assert.False(t, cfg.IsMongoURI())

	cfg.Kafka.Brokers = " broker-1:9092, ,broker-2:9092 "
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers())

	cfg.Kafka.Brokers = ""
	assert.Empty(t, cfg.KafkaBrokers())
}
