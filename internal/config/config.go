// Package config handles server configuration: defaults, an optional .env
// file, COURSEMART_* environment variables and command-line flags, applied
// in that order.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COURSEMART_"

// Config holds runtime settings for the course marketplace server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DataDir: directory holding the three collection documents.
//   - UsersFile / AdminsFile / CoursesFile: document names, relative to DataDir unless absolute.
//   - JWTKey: HS256 signing secret. Required.
//   - TokenTTL: lifetime of issued tokens.
//   - LockTimeout: bound on waiting for a collection write lock.
//   - LoginWindow / LoginMaxFails / LoginBlockFor: login rate limiting.
//   - TLSCert / TLSKey: serve TLS when both are set.
//   - Dev: development logging and gin debug mode.
type Config struct {
	Addr        string
	DataDir     string
	UsersFile   string
	AdminsFile  string
	CoursesFile string

	JWTKey   string
	TokenTTL time.Duration

	LockTimeout time.Duration

	LoginWindow   time.Duration
	LoginMaxFails int
	LoginBlockFor time.Duration

	TLSCert string
	TLSKey  string

	Dev bool
}

// LoadDefaults populates Config with development defaults. JWTKey has no default.
func (c *Config) LoadDefaults() {
	c.Addr = ":9000"
	c.DataDir = "data"
	c.UsersFile = "user.json"
	c.AdminsFile = "admin.json"
	c.CoursesFile = "course.json"
	c.TokenTTL = time.Hour
	c.LockTimeout = 5 * time.Second
	c.LoginWindow = 15 * time.Minute
	c.LoginMaxFails = 5
	c.LoginBlockFor = 15 * time.Minute
}

// Load builds a Config from defaults, the .env file named by envFile (if it
// exists), the process environment and args (without the program name).
func Load(envFile string, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(lookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTKey == "" {
		errs = append(errs, errors.New("missing jwt signing key"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("lock timeout must be positive, got %s", c.LockTimeout))
	}
	if c.LoginWindow <= 0 {
		errs = append(errs, fmt.Errorf("login window must be positive, got %s", c.LoginWindow))
	}
	if c.LoginBlockFor <= 0 {
		errs = append(errs, fmt.Errorf("login block must be positive, got %s", c.LoginBlockFor))
	}
	if c.LoginMaxFails <= 0 {
		errs = append(errs, fmt.Errorf("login max fails must be positive, got %d", c.LoginMaxFails))
	}
	if c.UsersFile == "" || c.AdminsFile == "" || c.CoursesFile == "" {
		errs = append(errs, errors.New("empty collection file name"))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("tls cert and key must be set together"))
	}
	return errors.Join(errs...)
}

// TLS reports whether the server should serve HTTPS.
func (c *Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

// UsersPath returns the location of the users document.
func (c *Config) UsersPath() string { return c.path(c.UsersFile) }

// AdminsPath returns the location of the admins document.
func (c *Config) AdminsPath() string { return c.path(c.AdminsFile) }

// CoursesPath returns the location of the courses document.
func (c *Config) CoursesPath() string { return c.path(c.CoursesFile) }

func (c *Config) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
