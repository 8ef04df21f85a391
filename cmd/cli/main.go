// Command cm is a CLI client for the course marketplace API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/coursemart/internal/model"
	"github.com/and161185/coursemart/internal/service"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// tokenStore holds one token per role.
type tokenStore map[model.Role]tokenFile

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "coursemart")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "coursemart")
}

func tokenPath() string { return filepath.Join(cfgDir(), "tokens.json") }

func readTokens() (tokenStore, error) {
	b, err := os.ReadFile(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return tokenStore{}, nil
	}
	if err != nil {
		return nil, err
	}
	ts := tokenStore{}
	if err := json.Unmarshal(b, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func saveToken(role model.Role, tok string, exp time.Time) error {
	ts, err := readTokens()
	if err != nil {
		// unreadable file is replaced
		ts = tokenStore{}
	}
	ts[role] = tokenFile{AccessToken: tok, ExpiresAt: exp}

	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(ts)
}

func loadToken(role model.Role) (string, error) {
	ts, err := readTokens()
	if err != nil {
		return "", err
	}
	tf, ok := ts[role]
	if !ok || tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", fmt.Errorf("no valid %s token (login required)", role)
	}
	return tf.AccessToken, nil
}

// tokenExpiry reads exp from the token without verifying it; the server
// remains the authority.
func tokenExpiry(tok string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Hour)
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func parseRole(s string) (model.Role, error) {
	r := model.Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q (want admin or user)", s)
	}
	return r, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `cm CLI
Usage:
  cm -addr URL [-cacert file | -insecure] <cmd> [args]

Commands:
  version
  signup     -role admin|user -u <username> -p <password>   (saves token)
  login      -role admin|user -u <username> -p <password>   (saves token)
  courses    [-all]                                         (-all: admin catalog)
  create     -title T -desc D -price N -published -image URL
  update     -id <uuid> -title T -desc D -price N -published -image URL
  buy        -id <uuid>
  purchased
`)
	os.Exit(2)
}

// courseFlags registers the five course fields on fs.
func courseFlags(fs *flag.FlagSet) func() service.CourseInput {
	title := fs.String("title", "", "course title")
	desc := fs.String("desc", "", "description")
	price := fs.Float64("price", 0, "price")
	published := fs.Bool("published", false, "visible to users")
	image := fs.String("image", "", "image link")
	return func() service.CourseInput {
		return service.CourseInput{
			Title:       title,
			Description: desc,
			Price:       price,
			Published:   published,
			ImageLink:   image,
		}
	}
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the configured server.
func main() {
	// global flags
	addr := flag.String("addr", "http://localhost:9000", "server base URL")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	insecure := flag.Bool("insecure", false, "skip cert verify (dev)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli := newAPIClient(*addr, *caPath, *insecure, 15*time.Second)

	switch cmd {

	case "version":
		fmt.Printf("cm %s (%s)\n", version, buildDate)

	case "signup", "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		roleName := fs.String("role", "user", "admin or user")
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		role, err := parseRole(*roleName)
		if err != nil {
			fail(err)
		}

		call := cli.login
		if cmd == "signup" {
			call = cli.signup
		}
		resp, err := call(ctx, role, *u, *p)
		if err != nil {
			fail(err)
		}
		if err := saveToken(role, resp.Token, tokenExpiry(resp.Token)); err != nil {
			fail(err)
		}
		fmt.Println(resp.Message)

	case "courses":
		fs := flag.NewFlagSet("courses", flag.ExitOnError)
		all := fs.Bool("all", false, "full catalog (admin)")
		_ = fs.Parse(args)

		role := model.RoleUser
		if *all {
			role = model.RoleAdmin
		}
		tok, err := loadToken(role)
		if err != nil {
			fail(err)
		}
		list, err := cli.courses(ctx, role, tok)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		input := courseFlags(fs)
		_ = fs.Parse(args)

		tok, err := loadToken(model.RoleAdmin)
		if err != nil {
			fail(err)
		}
		id, err := cli.createCourse(ctx, tok, input())
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		id := fs.String("id", "", "course id (uuid)")
		input := courseFlags(fs)
		_ = fs.Parse(args)
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		tok, err := loadToken(model.RoleAdmin)
		if err != nil {
			fail(err)
		}
		if err := cli.updateCourse(ctx, tok, *id, input()); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "buy":
		fs := flag.NewFlagSet("buy", flag.ExitOnError)
		id := fs.String("id", "", "course id (uuid)")
		_ = fs.Parse(args)
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		tok, err := loadToken(model.RoleUser)
		if err != nil {
			fail(err)
		}
		if err := cli.buy(ctx, tok, *id); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "purchased":
		tok, err := loadToken(model.RoleUser)
		if err != nil {
			fail(err)
		}
		list, err := cli.purchased(ctx, tok)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	default:
		usage()
	}
}

// ---- helpers ----

func fail(err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		fmt.Fprintf(os.Stderr, "api error: status=%d msg=%s\n", ae.Status, ae.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
