// Command tlsecho runs one side of a single-message TLS 1.3 exchange.
//
// The server accepts one connection, completes the handshake and logs the
// message it receives. The client connects, completes the handshake and
// sends one message without waiting for a reply.
//
// Usage:
//
//	tlsecho <command> [flags]
//
// Commands:
//
//	server   Accept one connection and log the received message
//	client   Send one message to the server
//	certs    Write a demo CA and localhost server certificate
//
// Examples:
//
//	# Generate demo certificates into ./certs
//	tlsecho certs -out certs
//
//	# Run the server
//	tlsecho server -cert certs/server.pem -privkey certs/server.key
//
//	# Send the default message
//	tlsecho client -ca certs/ca.pem
//
//	# Capture protocol events for tlsecho-log
//	tlsecho server -cert certs/server.pem -privkey certs/server.key -protocol-log server.tlog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `tlsecho - single-message TLS 1.3 echo

Usage:
  tlsecho <command> [flags]

Commands:
  server   Accept one connection and log the received message
  client   Send one message to the server
  certs    Write a demo CA and localhost server certificate

Use "tlsecho <command> -help" for more information about a command.
`

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks command line mistakes, which exit with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "server":
		err = runServer(ctx, rest, stderr)
	case "client":
		err = runClient(ctx, rest, stderr)
	case "certs":
		err = runCerts(rest, stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	if err == nil || errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	fmt.Fprintf(stderr, "tlsecho: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitError
}
