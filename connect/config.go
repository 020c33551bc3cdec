// Package connect implements the Connection Lifecycle Layer: environment
// detection (C1) and the polymorphic Connection Manager (C2) — Simple,
// Persistent and Pooled variants sharing one contract, as laid out in
// spec.md §4.1/§4.2 and SPEC_FULL.md.
package connect

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Descriptor is the connection descriptor of spec §3: everything needed to
// open a backing connection, with the pooled variant's extra knobs folded
// in (min/max/timeouts) since every variant is configured from the same
// environment in practice.
type Descriptor struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Charset  string
	Collation string

	Persistent bool

	Min              int
	Max              int
	ConnectTimeoutSec int
	WaitTimeoutSec    int
	MaxIdleSec        int
	HeartbeatSec      int
}

const (
	defaultDriver    = "mysql"
	defaultHost      = "localhost"
	defaultPort      = 3306
	defaultCharset   = "utf8mb4"
	defaultCollation = "utf8mb4_unicode_ci"
	defaultMin       = 1
	defaultMax       = 10
	defaultConnectTimeoutSec = 10
	defaultWaitTimeoutSec    = 3
	defaultMaxIdleSec        = 60
)

// Getenv is the out-of-scope environment-variable loader's contract (spec
// §1): this module only ever calls it, it never owns path resolution or
// .env parsing itself.
type Getenv func(key string) string

// LoadDescriptorFromEnv reads the spec §6 environment variables into a
// Descriptor, falling back to the per-field defaults in spec §3 on missing
// or non-parseable values. isCLI toggles the DB_HOST_CLI_DEV override.
func LoadDescriptorFromEnv(getenv Getenv, isCLI bool) *Descriptor {
	d := &Descriptor{
		Driver:            firstNonEmpty(getenv("DB_DRIVER"), defaultDriver),
		Host:              firstNonEmpty(getenv("DB_HOST"), defaultHost),
		Port:              atoiOrDefault(getenv("DB_PORT"), defaultPort),
		Database:          getenv("DB_NAME"),
		Username:          getenv("DB_USER"),
		Password:          getenv("DB_PASSWORD"),
		Charset:           firstNonEmpty(getenv("DB_CHARSET"), defaultCharset),
		Collation:         firstNonEmpty(getenv("DB_COLLATION"), defaultCollation),
		Persistent:        isTruthy(getenv("DB_PERSISTENT_CONNECTIONS")),
		Min:               atoiOrDefault(getenv("MIN_DB_CONNECTION_POOL"), defaultMin),
		Max:               atoiOrDefault(getenv("MAX_DB_CONNECTION_POOL"), defaultMax),
		ConnectTimeoutSec: atoiOrDefault(getenv("DB_CONNECTION_TIME_OUT"), defaultConnectTimeoutSec),
		WaitTimeoutSec:    atoiOrDefault(getenv("DB_CONNECTION_EXPIER_TIME"), defaultWaitTimeoutSec),
		MaxIdleSec:        atoiOrDefault(getenv("DB_CONNECTION_MAX_AGE"), defaultMaxIdleSec),
	}

	if isCLI {
		if devHost := getenv("DB_HOST_CLI_DEV"); devHost != "" {
			d.Host = devHost
		}
	}

	return d
}

// OSGetenv is the default Getenv backed by the process environment.
func OSGetenv(key string) string { return os.Getenv(key) }

func firstNonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func atoiOrDefault(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func (d *Descriptor) connectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutSec) * time.Second
}

func (d *Descriptor) waitTimeout() time.Duration {
	return time.Duration(d.WaitTimeoutSec) * time.Second
}

func (d *Descriptor) maxIdle() time.Duration {
	return time.Duration(d.MaxIdleSec) * time.Second
}
