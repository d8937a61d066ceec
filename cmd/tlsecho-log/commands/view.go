package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tlsecho/tlsecho-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// timestamp [conn:id] ROLE DIR LAYER Type
	ts := event.Timestamp.UTC().Format(timestampFormat)

	var typeLabel string
	switch {
	case event.Record != nil:
		typeLabel = "Record"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Application != nil:
		typeLabel = "Data"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	dir := event.Direction.String()
	if event.Record == nil && event.Application == nil {
		dir = "-"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-6s %-3s %s %s\n",
		ts, shortenConnID(event.ConnectionID), event.LocalRole.String(), dir, event.Layer.String(), typeLabel)

	switch {
	case event.Record != nil:
		formatRecordDetails(w, event.Record)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Application != nil:
		formatApplicationDetails(w, event.Application)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Remote: %s\n", event.RemoteAddr)
	}

	fmt.Fprintln(w)
}

func formatRecordDetails(w io.Writer, rec *log.RecordEvent) {
	fmt.Fprintf(w, "  Size: %d bytes (iteration %d)\n", rec.Size, rec.Iteration)
	if len(rec.ContentTypes) > 0 {
		fmt.Fprintf(w, "  Records: %s\n", strings.Join(rec.ContentTypes, ", "))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Iterations > 0 {
		fmt.Fprintf(w, "  Iterations: %d\n", sc.Iterations)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatApplicationDetails prints text payloads quoted and binary ones in hex.
func formatApplicationDetails(w io.Writer, app *log.ApplicationEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", app.Size)
	if len(app.Data) == 0 {
		return
	}
	if utf8.Valid(app.Data) {
		fmt.Fprintf(w, "  Text: %q", app.Data)
	} else {
		fmt.Fprintf(w, "  Data: %x", app.Data)
	}
	if app.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// RunView prints every event in the capture file that matches filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
