// Command tlsecho-log views and analyzes tlsecho capture files.
//
// Capture files are written by "tlsecho server" and "tlsecho client" when run
// with the -protocol-log flag.
//
// Usage:
//
//	tlsecho-log <command> [flags] <file.tlog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL or CSV
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View only handshake records
//	tlsecho-log view -category record server.tlog
//
//	# Export client events to CSV
//	tlsecho-log export -format csv -role client client.tlog
//
//	# Show per-connection handshake iterations
//	tlsecho-log stats server.tlog
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tlsecho/tlsecho-go/cmd/tlsecho-log/commands"
)

const usage = `tlsecho-log - tlsecho capture analyzer

Usage:
  tlsecho-log <command> [flags] <file.tlog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSONL or CSV
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file

Use "tlsecho-log <command> -help" for more information about a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "view":
		err = runView(rest, stdout, stderr)
	case "export":
		err = runExport(rest, stdout, stderr)
	case "filter":
		err = runFilter(rest, stdout, stderr)
	case "stats":
		err = runStats(rest, stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(stderr, usage)
		return 1
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// newFlagSet returns a flag set whose usage text names the command.
func newFlagSet(name, summary string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "tlsecho-log %s - %s\n\nUsage:\n  tlsecho-log %s [flags] <file.tlog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

func registerFilter(fs *flag.FlagSet, opts *commands.FilterOptions) {
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, session, application)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (record, state, application, error)")
	fs.StringVar(&opts.Role, "role", "", "Filter by capturing endpoint (server, client)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Keep events at or after this time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Keep events before this time (RFC3339)")
}

// capturePath parses args and returns the single positional file argument.
func capturePath(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", errors.New("capture file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("view", "View capture file in human-readable format", stderr)
	var opts commands.FilterOptions
	registerFilter(fs, &opts)

	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, stdout)
}

func runExport(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("export", "Export capture file to JSONL or CSV", stderr)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	var opts commands.FilterOptions
	registerFilter(fs, &opts)

	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output, filter, stdout)
}

func runFilter(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("filter", "Filter capture file and write to new file", stderr)
	output := fs.String("o", "", "Output file (required)")
	var opts commands.FilterOptions
	registerFilter(fs, &opts)

	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		return errors.New("output file required (-o)")
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	count, err := commands.RunFilter(path, *output, filter)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d events to %s\n", count, *output)
	return nil
}

func runStats(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("stats", "Show statistics about the capture file", stderr)
	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, stdout)
}
