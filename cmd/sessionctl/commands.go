package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/sessionsdk"
	"golang.org/x/term"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

type cli struct {
	agent  *sessionsdk.Agent
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, c *cli, args []string) error
}

var commands = []command{
	{"register", "create an account and log in", cmdRegister},
	{"login", "log in and store the tokens", cmdLogin},
	{"profile", "show the logged in account", cmdProfile},
	{"refresh", "renew the access token now", cmdRefresh},
	{"logout", "forget the stored tokens", cmdLogout},
	{"status", "show session state and token expiry", cmdStatus},
	{"health", "check server liveness and readiness", cmdHealth},
	{"gen-secret", "print a random signing secret", cmdGenSecret},
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr("SESSIOND_URL", "http://localhost:4000"), "sessiond base URL")
	tokens := fs.String("tokens", defaultTokenPath(), "token file")
	revoke := fs.Bool("revoke", false, "revoke the renewal token on logout")
	timeout := fs.Duration("timeout", 30*time.Second, "overall command timeout")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		usage(fs)
		return 2
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(fs)
		return 2
	}

	agent := sessionsdk.NewAgent(sessionsdk.NewClient(*server), &sessionsdk.FileTokenStore{Path: *tokens})
	agent.RevokeOnLogout = *revoke

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := &cli{agent: agent, stdout: stdout, stderr: stderr}
	if err := cmd.run(ctx, c, rest); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		if errors.Is(err, sessionsdk.ErrNoSession) || errors.Is(err, sessionsdk.ErrSessionEnded) {
			fmt.Fprintln(stderr, "run 'sessionctl login' to start a new session")
		}
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: sessionctl [flags] <command> [command flags]")
	fmt.Fprintln(out, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-11s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}

// credentials parses -u/-p and prompts for the password when -p is absent.
func (c *cli) credentials(name string, args []string) (string, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(*username) == "" {
		return "", "", errors.New("-u is required")
	}

	if *password == "" {
		fmt.Fprint(c.stderr, "Password: ")
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		*password = string(pw)
	}
	return *username, *password, nil
}

func cmdRegister(ctx context.Context, c *cli, args []string) error {
	username, password, err := c.credentials("register", args)
	if err != nil {
		return err
	}
	if err := c.agent.Register(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "registered and logged in as %s\n", username)
	return nil
}

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	username, password, err := c.credentials("login", args)
	if err != nil {
		return err
	}
	if err := c.agent.Login(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "logged in as %s\n", username)
	return nil
}

func cmdProfile(ctx context.Context, c *cli, _ []string) error {
	p, err := c.agent.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "username: %s\n", p.Username)
	return nil
}

func cmdRefresh(ctx context.Context, c *cli, _ []string) error {
	if err := c.agent.Renew(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "access token renewed")
	return nil
}

func cmdLogout(ctx context.Context, c *cli, _ []string) error {
	if err := c.agent.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "logged out")
	return nil
}

func cmdStatus(_ context.Context, c *cli, _ []string) error {
	state := c.agent.State()
	fmt.Fprintf(c.stdout, "state: %s\n", state)
	if state != sessionsdk.HasSession {
		return nil
	}

	t, err := c.agent.Store.Load()
	if err != nil {
		return err
	}
	for _, tok := range []struct{ label, value string }{
		{"access", t.AccessToken},
		{"renewal", t.RefreshToken},
	} {
		exp, err := sessionsdk.InspectExpiry(tok.value)
		if err != nil {
			fmt.Fprintf(c.stdout, "%s token: unreadable\n", tok.label)
			continue
		}
		fmt.Fprintf(c.stdout, "%s token expires: %s\n", tok.label, exp.Local().Format(time.RFC3339))
	}
	return nil
}

func cmdHealth(ctx context.Context, c *cli, _ []string) error {
	live, err := c.agent.Client.GetLiveness(ctx)
	if err != nil {
		return fmt.Errorf("liveness: %w", err)
	}
	fmt.Fprintf(c.stdout, "live: %s (version %s, uptime %s)\n", live.Status, live.Version, live.Uptime)

	ready, err := c.agent.Client.GetReadiness(ctx)
	if err != nil {
		return fmt.Errorf("readiness: %w", err)
	}
	fmt.Fprintf(c.stdout, "ready: %s\n", ready.Status)
	return nil
}

func cmdGenSecret(_ context.Context, c *cli, _ []string) error {
	secret, err := cryptox.GenerateSecret(cryptox.SecretSize256)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, secret)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sessionctl-tokens.json"
	}
	return filepath.Join(dir, "sessionctl", "tokens.json")
}
