// Package config loads the CLI's configuration as an explicit handle (spec
// §9 "Singletons and reset hooks": no module-level mutable state — unlike
// the teacher's package-level viper.Viper singleton, Load returns a *Config
// the root command owns and threads down to every subsystem).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved, read-only configuration handle (spec §6
// "Configuration").
type Config struct {
	Host              string
	APIKey            string
	Timeout           time.Duration
	DBPath            string
	InsecureHTTPS     bool
	CleanupTimeoutMs  int
	StrictPermissions bool

	// SourceFile is the config file actually loaded, or "" if none was found.
	SourceFile string
}

const envPrefix = "WF"

// Load resolves configuration via the precedence chain in spec.md §6:
// project config file -> user config dir -> home dir -> env vars -> defaults
// (grounded on the teacher's internal/config.Initialize precedence walk,
// adapted from YAML to the spec's required JSON format and from a package
// singleton to a returned value).
func Load(startDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	v.SetDefault("host", "")
	v.SetDefault("apiKey", "")
	v.SetDefault("timeout", 30000)
	v.SetDefault("dbPath", "")
	v.SetDefault("insecureHttps", false)
	v.SetDefault("cleanupTimeoutMs", 5000)
	v.SetDefault("strictPermissions", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	sourceFile, err := locateConfigFile(startDir)
	if err != nil {
		return nil, err
	}

	// strictPermissions must come from the env/default layer, not from the
	// file we're about to permission-check — trusting the file's own
	// strictness flag before verifying the file is safe to trust is circular.
	strict := v.GetBool("strictPermissions")
	if sourceFile != "" {
		if warn, rerr := checkPermissions(sourceFile, strict); rerr != nil {
			return nil, rerr
		} else if warn != "" {
			fmt.Fprintln(os.Stderr, warn)
		}
		v.SetConfigFile(sourceFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", sourceFile, err)
		}
	}

	cfg := &Config{
		Host:              v.GetString("host"),
		APIKey:            v.GetString("apiKey"),
		Timeout:           time.Duration(v.GetInt("timeout")) * time.Millisecond,
		DBPath:            v.GetString("dbPath"),
		InsecureHTTPS:     v.GetBool("insecureHttps"),
		CleanupTimeoutMs:  v.GetInt("cleanupTimeoutMs"),
		StrictPermissions: v.GetBool("strictPermissions"),
		SourceFile:        sourceFile,
	}
	return cfg, nil
}

// locateConfigFile walks the precedence chain and returns the first config
// file found, or "" if none exists anywhere in the chain.
func locateConfigFile(startDir string) (string, error) {
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("config: resolve cwd: %w", err)
		}
		startDir = cwd
	}

	for dir := startDir; ; {
		candidate := filepath.Join(dir, ".n8n-cli", "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(userConfigDir, "n8n-cli", "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".n8n-cli", "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// checkPermissions enforces spec.md §6 "its permissions are checked on
// load; permissive modes trigger a warning, and, under strict mode,
// refusal with a clear error." Windows has no POSIX mode bits worth
// enforcing here, so the check is a no-op there.
func checkPermissions(path string, strict bool) (warning string, err error) {
	if runtime.GOOS == "windows" {
		return "", nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("config: stat %s: %w", path, err)
	}
	mode := info.Mode().Perm()
	if mode&0o077 == 0 {
		return "", nil
	}
	if strict {
		return "", fmt.Errorf("config: %s is readable/writable by group or others (mode %s); refusing to load under strictPermissions", path, mode)
	}
	return fmt.Sprintf("config: warning: %s has permissive mode %s; restrict to owner-only (chmod 0600)", path, mode), nil
}

// Validate performs light sanity checks beyond what viper's defaults give
// us — an empty host or API key is not itself an error (some commands, like
// catalog lookups, never touch the network), and no command checks them
// before the apiclient.Client is constructed.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.CleanupTimeoutMs <= 0 {
		return fmt.Errorf("config: cleanupTimeoutMs must be positive, got %d", c.CleanupTimeoutMs)
	}
	return nil
}

// WriteDefault renders a starter config.json at path for `wf config init`
// (supplemented convenience, not excluded by any Non-goal). It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists; remove it first", path)
	}
	data, err := marshalDefault()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o600)
}

// marshalDefault renders a starter config.json for `wf config init`-style
// flows (supplemented convenience, not excluded by any Non-goal).
func marshalDefault() ([]byte, error) {
	return json.MarshalIndent(map[string]any{
		"host":              "",
		"apiKey":            "",
		"timeout":           30000,
		"insecureHttps":     false,
		"cleanupTimeoutMs":  5000,
		"strictPermissions": false,
	}, "", "  ")
}

// envKeyFor returns the environment variable name for a config key, e.g.
// "cleanupTimeoutMs" -> "WF_CLEANUPTIMEOUTMS". Exposed for tests that need
// to assert the precedence chain's env lookup.
func envKeyFor(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}
