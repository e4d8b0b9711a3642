package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xo/dburl"
	"gopkg.in/ini.v1"
)

// MemoryDatabaseURL selects the in-process store instead of PostgreSQL.
const MemoryDatabaseURL = "memory://"

type Config struct {
	Env         string
	HTTPPort    string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	TokenTTL    time.Duration
	RateRPS     int
	Migrate     bool
	WorkerCount int

	MaxLoginAttempts int
	LockDuration     time.Duration
}

// Error lists every missing or invalid setting found by Validate.
type Error struct {
	Missing []string
	Invalid []string
}

func (e *Error) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(e.Invalid, ", "))
	}
	return "config: " + strings.Join(parts, "; ")
}

// Load reads the environment. If APP_CONFIG names an ini file its keys are
// used for anything the environment leaves unset.
func Load() (Config, error) {
	var src source
	if path := os.Getenv("APP_CONFIG"); path != "" {
		f, err := ini.Load(path)
		if err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
		src.file = f
	}

	var bad []string
	cfg := Config{
		Env:              src.get("APP_ENV", "dev"),
		HTTPPort:         src.get("HTTP_PORT", ""),
		DatabaseURL:      src.get("DATABASE_URL", ""),
		JWTSecret:        src.get("JWT_SECRET", ""),
		JWTIssuer:        src.get("JWT_ISSUER", "publishing-backend"),
		TokenTTL:         src.duration("TOKEN_TTL", 2*time.Hour, &bad),
		RateRPS:          src.int("RATE_RPS", 10, &bad),
		Migrate:          src.get("APP_MIGRATE", "") == "true",
		WorkerCount:      src.int("WORKER_COUNT", 4, &bad),
		MaxLoginAttempts: src.int("AUTH_MAX_ATTEMPTS", 5, &bad),
		LockDuration:     src.duration("AUTH_LOCK_DURATION", 15*time.Minute, &bad),
	}
	if len(bad) > 0 {
		return cfg, &Error{Invalid: bad}
	}
	return cfg, nil
}

// Validate is the startup gate: the process must not serve without a
// persistence target, a signing secret and a port.
func (c Config) Validate() error {
	e := &Error{}
	if c.DatabaseURL == "" {
		e.Missing = append(e.Missing, "DATABASE_URL")
	} else if !c.UsesMemoryStore() {
		u, err := dburl.Parse(c.DatabaseURL)
		if err != nil || u.Driver != "postgres" {
			e.Invalid = append(e.Invalid, "DATABASE_URL")
		}
	}
	if c.JWTSecret == "" {
		e.Missing = append(e.Missing, "JWT_SECRET")
	}
	if c.HTTPPort == "" {
		e.Missing = append(e.Missing, "HTTP_PORT")
	} else if p, err := strconv.Atoi(c.HTTPPort); err != nil || p <= 0 || p > 65535 {
		e.Invalid = append(e.Invalid, "HTTP_PORT")
	}
	if c.MaxLoginAttempts <= 0 {
		e.Invalid = append(e.Invalid, "AUTH_MAX_ATTEMPTS")
	}
	if c.LockDuration <= 0 {
		e.Invalid = append(e.Invalid, "AUTH_LOCK_DURATION")
	}
	if c.WorkerCount <= 0 {
		e.Invalid = append(e.Invalid, "WORKER_COUNT")
	}
	if len(e.Missing) > 0 || len(e.Invalid) > 0 {
		return e
	}
	return nil
}

func (c Config) UsesMemoryStore() bool {
	return c.DatabaseURL == MemoryDatabaseURL
}

type source struct {
	file *ini.File
}

func (s source) get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if s.file != nil {
		if v := s.file.Section("").Key(key).String(); v != "" {
			return v
		}
	}
	return def
}

func (s source) int(key string, def int, bad *[]string) int {
	v := s.get(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*bad = append(*bad, key)
		return def
	}
	return n
}

func (s source) duration(key string, def time.Duration, bad *[]string) time.Duration {
	v := s.get(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*bad = append(*bad, key)
		return def
	}
	return d
}
