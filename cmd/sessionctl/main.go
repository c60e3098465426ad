// Command sessionctl drives a sessiond server from the terminal. Tokens are
// kept in a file between invocations and renewed automatically.
//
// Usage:
//
//	sessionctl [-server URL] [-tokens FILE] [-revoke] <command> [flags]
//
// Commands: register, login, profile, refresh, logout, status, health,
// gen-secret.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
