package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func lookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// loadDotEnv exports variables from path into the process environment.
// Variables already set win; a missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays COURSEMART_* variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("ADDR", &c.Addr)
	str("DATA_DIR", &c.DataDir)
	str("USERS_FILE", &c.UsersFile)
	str("ADMINS_FILE", &c.AdminsFile)
	str("COURSES_FILE", &c.CoursesFile)
	str("JWT_KEY", &c.JWTKey)
	dur("TOKEN_TTL", &c.TokenTTL)
	dur("LOCK_TIMEOUT", &c.LockTimeout)
	dur("LOGIN_WINDOW", &c.LoginWindow)
	dur("LOGIN_BLOCK_FOR", &c.LoginBlockFor)
	str("TLS_CERT", &c.TLSCert)
	str("TLS_KEY", &c.TLSKey)

	if v, ok := lookup(EnvPrefix + "LOGIN_MAX_FAILS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLOGIN_MAX_FAILS: %w", EnvPrefix, err))
		} else {
			c.LoginMaxFails = n
		}
	}
	if v, ok := lookup(EnvPrefix + "DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDEV: %w", EnvPrefix, err))
		} else {
			c.Dev = b
		}
	}
	return errors.Join(errs...)
}
