package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-redis/redis/v8"
)

// configStruct is the glue for all configuration sections
type configStruct struct {
	Common  CommonConf  `toml:"common"`
	API     APIConf     `toml:"api"`
	Session SessionConf `toml:"session"`
}

// CommonConf is the data required for the web server itself
type CommonConf struct {
	ListenAddr string `toml:"listen_addr"`
	// PublicURL is used to build absolute links, for example when sharing posts
	PublicURL string `toml:"public_url"`
	LogDir    string `toml:"log_dir"`
	Debug     bool   `toml:"debug"`
	// FlagsPath is the JSON file runtime flags are persisted to
	FlagsPath string `toml:"flags_path"`
}

// APIConf describes how to reach the remote blog API
type APIConf struct {
	BaseURL string `toml:"base_url"`
	// Timeout is in seconds and applies to every remote call
	Timeout int `toml:"timeout"`
}

func (a APIConf) TimeoutDuration() time.Duration {
	if a.Timeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.Timeout) * time.Second
}

// SessionConf configures where login sessions are kept
type SessionConf struct {
	// Backend is either "memory" or "redis"
	Backend string `toml:"backend"`
	// MaxSessions bounds the in-memory store
	MaxSessions int64 `toml:"max_sessions"`
	// SecureCookie marks the session cookie as HTTPS-only
	SecureCookie bool `toml:"secure_cookie"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// RedisOptions is used when Backend is "redis"
func (s SessionConf) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	}
}

var (
	Common  CommonConf
	API     APIConf
	Session SessionConf
)

func defaults() configStruct {
	return configStruct{
		Common: CommonConf{
			ListenAddr: "localhost:8080",
			PublicURL:  "http://localhost:8080",
			LogDir:     "./logs",
			FlagsPath:  "./flags.json",
		},
		API: APIConf{
			BaseURL: "http://localhost:8080/api/v1",
			Timeout: 15,
		},
		Session: SessionConf{
			Backend:     "memory",
			MaxSessions: 10000,
			RedisAddr:   "localhost:6379",
		},
	}
}

// Load reads the TOML file at path. A missing file leaves the defaults in place.
func Load(path string) error {
	c := defaults()
	md, err := toml.DecodeFile(path, &c)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("couldn't decode config: %w", err)
	}
	if len(md.Undecoded()) > 0 {
		slog.Warn("There were a few undecoded keys in the config", slog.String("keys", spew.Sdump(md.Undecoded())))
	}
	if c.Session.Backend != "memory" && c.Session.Backend != "redis" {
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	Common = c.Common
	API = c.API
	Session = c.Session
	if Common.FlagsPath != "" {
		SetConfigV2Path(Common.FlagsPath)
	}
	return nil
}

// Save writes the current config back to path, creating the directory if needed
func Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(configStruct{Common, API, Session}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
