package connect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeGetenv(values map[string]string) Getenv {
	return func(key string) string { return values[key] }
}

func TestLoadDescriptorFromEnvDefaults(t *testing.T) {
	d := LoadDescriptorFromEnv(fakeGetenv(nil), false)

	assert.Equal(t, defaultDriver, d.Driver)
	assert.Equal(t, defaultHost, d.Host)
	assert.Equal(t, defaultPort, d.Port)
	assert.Equal(t, defaultCharset, d.Charset)
	assert.Equal(t, defaultCollation, d.Collation)
	assert.False(t, d.Persistent)
	assert.Equal(t, defaultMin, d.Min)
	assert.Equal(t, defaultMax, d.Max)
}

func TestLoadDescriptorFromEnvOverrides(t *testing.T) {
	d := LoadDescriptorFromEnv(fakeGetenv(map[string]string{
		"DB_DRIVER":                  "postgres",
		"DB_HOST":                    "db.internal",
		"DB_PORT":                    "5433",
		"DB_NAME":                    "app",
		"DB_USER":                    "svc",
		"DB_PASSWORD":                "secret",
		"DB_PERSISTENT_CONNECTIONS":  "true",
		"MIN_DB_CONNECTION_POOL":     "2",
		"MAX_DB_CONNECTION_POOL":     "20",
	}), false)

	assert.Equal(t, "postgres", d.Driver)
	assert.Equal(t, "db.internal", d.Host)
	assert.Equal(t, 5433, d.Port)
	assert.Equal(t, "app", d.Database)
	assert.Equal(t, "svc", d.Username)
	assert.Equal(t, "secret", d.Password)
	assert.True(t, d.Persistent)
	assert.Equal(t, 2, d.Min)
	assert.Equal(t, 20, d.Max)
}

func TestLoadDescriptorFromEnvBadPortFallsBackToDefault(t *testing.T) {
	d := LoadDescriptorFromEnv(fakeGetenv(map[string]string{"DB_PORT": "not-a-number"}), false)
	assert.Equal(t, defaultPort, d.Port)
}

func TestLoadDescriptorFromEnvCLIDevHostOverride(t *testing.T) {
	values := map[string]string{"DB_HOST": "prod-host", "DB_HOST_CLI_DEV": "localhost"}

	d := LoadDescriptorFromEnv(fakeGetenv(values), true)
	assert.Equal(t, "localhost", d.Host)

	d = LoadDescriptorFromEnv(fakeGetenv(values), false)
	assert.Equal(t, "prod-host", d.Host)
}
