// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads the fairburn node configuration from a key = value
// file, with FAIRBURN_* environment overrides.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	configFileName = "config"
	stateFileName  = "state.db"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "FAIRBURN_"
)

// Config holds the node configuration.
type Config struct {
	DataDir     string
	Network     string
	LogLevel    string
	LogFile     string
	NativeDenom string
	PoolAddress string // optional; required only to render payout transactions
	PoolKey     string
	Admins      []string
	DNSUpstream string // optional; enables DNSSEC lookups for paymail
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		Network:     "mainnet",
		LogLevel:    "info",
		NativeDenom: "sat",
		PoolKey:     "fair-burn-pool",
	}
}

// DefaultDataDir returns ~/.fairburn, or .fairburn when the home directory
// cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fairburn"
	}
	return filepath.Join(home, ".fairburn")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// StatePath returns the state database path inside dataDir.
func StatePath(dataDir string) string {
	return filepath.Join(dataDir, stateFileName)
}

// IsMainnet reports whether addresses should use the mainnet version byte.
func (c Config) IsMainnet() bool {
	return c.Network == "mainnet"
}

// LoadConfig reads path on top of DefaultConfig. Blank lines and lines
// starting with # are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		cfg.set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# fairburn configuration\n\n")
	for _, kv := range cfg.pairs() {
		fmt.Fprintf(&b, "%s = %s\n", kv[0], kv[1])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads dotenv files into the process environment. Missing files
// are skipped; variables already set are not overridden.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with FAIRBURN_<KEY> variables, for example
// FAIRBURN_LOGLEVEL=debug.
func ApplyEnv(cfg Config) Config {
	for _, kv := range cfg.pairs() {
		if v, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(kv[0])); ok {
			cfg.set(kv[0], strings.TrimSpace(v))
		}
	}
	return cfg
}

func (c *Config) set(key, value string) {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "nativedenom":
		c.NativeDenom = value
	case "pooladdress":
		c.PoolAddress = value
	case "poolkey":
		c.PoolKey = value
	case "admins":
		c.Admins = splitList(value)
	case "dnsupstream":
		c.DNSUpstream = value
	}
}

func (c Config) pairs() [][2]string {
	return [][2]string{
		{"datadir", c.DataDir},
		{"network", c.Network},
		{"loglevel", c.LogLevel},
		{"logfile", c.LogFile},
		{"nativedenom", c.NativeDenom},
		{"pooladdress", c.PoolAddress},
		{"poolkey", c.PoolKey},
		{"admins", strings.Join(c.Admins, ",")},
		{"dnsupstream", c.DNSUpstream},
	}
}

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
