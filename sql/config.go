package sql

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// DefaultCloseTimeout bounds how long Close waits for the shell to exit
// after its input is closed before the process is killed.
const DefaultCloseTimeout = 5 * time.Second

var dsnKeys = []string{"dialect", "database", "command", "args", "close_timeout"}

// Config describes how to start one shell process.
type Config struct {
	// Dialect names a registered dialect. Required.
	Dialect string

	// Database is handed to the dialect's argument builder.
	Database string

	// Command overrides the dialect's default executable.
	Command string

	// Args replaces the dialect's argument vector entirely.
	Args []string

	// Env is appended to the current environment of the child.
	Env []string

	// CloseTimeout overrides DefaultCloseTimeout.
	CloseTimeout time.Duration
}

// resolvedConfig is a Config with its dialect looked up and defaults applied.
type resolvedConfig struct {
	args         []string
	closeTimeout time.Duration
	command      string
	database     string
	dialect      Dialect
	env          []string
}

func (c Config) resolve() (resolvedConfig, error) {
	if c.Dialect == "" {
		return resolvedConfig{}, errors.New("dialect is required")
	}

	dialect, err := LookupDialect(c.Dialect)

	if err != nil {
		return resolvedConfig{}, err
	}

	r := resolvedConfig{
		args:         c.Args,
		closeTimeout: DefaultCloseTimeout,
		command:      dialect.Command(),
		database:     c.Database,
		dialect:      dialect,
		env:          c.Env,
	}

	if c.Command != "" {
		r.command = c.Command
	}

	if r.args == nil {
		r.args = dialect.Args(c.Database)
	}

	if c.CloseTimeout > 0 {
		r.closeTimeout = c.CloseTimeout
	}

	return r, nil
}

// ParseDSN parses a connection string of space separated key=value pairs:
//
//	dialect=sqlite3 database=/var/lib/app.db command=/usr/bin/sqlite3 close_timeout=2s
//
// args takes a comma separated argument vector that replaces the dialect's.
func ParseDSN(name string) (Config, error) {
	args := make(map[string]string)

	for _, pair := range strings.Fields(name) {
		key, value, ok := strings.Cut(pair, "=")

		if !ok {
			return Config{}, fmt.Errorf("malformed connection string pair %q", pair)
		}

		if !slices.Contains(dsnKeys, key) {
			return Config{}, fmt.Errorf("unknown connection string key %q", key)
		}

		args[key] = value
	}

	// Validate required fields
	if args["dialect"] == "" {
		return Config{}, errors.New("dialect is required")
	}

	if _, err := LookupDialect(args["dialect"]); err != nil {
		return Config{}, err
	}

	config := Config{
		Dialect:  args["dialect"],
		Database: args["database"],
		Command:  args["command"],
	}

	if args["args"] != "" {
		config.Args = strings.Split(args["args"], ",")
	}

	if args["close_timeout"] != "" {
		timeout, err := time.ParseDuration(args["close_timeout"])

		if err != nil {
			return Config{}, fmt.Errorf("invalid close_timeout: %w", err)
		}

		config.CloseTimeout = timeout
	}

	return config, nil
}
