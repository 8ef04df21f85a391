package config

import (
	"flag"
	"io"
)

// parseFlags overlays command-line flags onto c.
//
// Supported flags:
//
//	-addr string           HTTP bind address (":9000")
//	-data-dir string       directory for collection documents
//	-jwt-key string        HS256 signing key
//	-token-ttl duration    token lifetime
//	-lock-timeout duration write lock wait bound
//	-login-window duration failure counting window
//	-login-max-fails int   failures before a block
//	-login-block duration  block length
//	-tls-cert string       TLS certificate (PEM)
//	-tls-key string        TLS private key (PEM)
//	-dev                   development mode
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("coursemart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory for collection documents")
	fs.StringVar(&c.JWTKey, "jwt-key", c.JWTKey, "HS256 signing key (required)")
	fs.DurationVar(&c.TokenTTL, "token-ttl", c.TokenTTL, "token TTL")
	fs.DurationVar(&c.LockTimeout, "lock-timeout", c.LockTimeout, "collection write lock timeout")
	fs.DurationVar(&c.LoginWindow, "login-window", c.LoginWindow, "login failure window")
	fs.IntVar(&c.LoginMaxFails, "login-max-fails", c.LoginMaxFails, "login failures before block")
	fs.DurationVar(&c.LoginBlockFor, "login-block", c.LoginBlockFor, "login block duration")
	fs.StringVar(&c.TLSCert, "tls-cert", c.TLSCert, "TLS certificate (PEM)")
	fs.StringVar(&c.TLSKey, "tls-key", c.TLSKey, "TLS private key (PEM)")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "development mode")

	return fs.Parse(args)
}
