package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tlsecho/tlsecho-go/pkg/log"
)

func TestStatsAggregation(t *testing.T) {
	stats := newStats()
	for _, e := range append(echoSession(), failedClient()...) {
		stats.add(e)
	}

	if stats.TotalEvents != 9 {
		t.Errorf("TotalEvents = %d, want 9", stats.TotalEvents)
	}
	if got := stats.EventsByCategory[log.CategoryRecord]; got != 4 {
		t.Errorf("record events = %d, want 4", got)
	}
	if got := stats.BytesByDirection[log.DirectionIn]; got != 517+80+1402 {
		t.Errorf("inbound bytes = %d", got)
	}
	if got := stats.BytesByDirection[log.DirectionOut]; got != 1402 {
		t.Errorf("outbound bytes = %d", got)
	}
	if got := stats.RecordTypes["handshake"]; got != 3 {
		t.Errorf("handshake records = %d, want 3", got)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}

	server := stats.Connections[serverConn]
	if server == nil {
		t.Fatal("server connection missing")
	}
	if server.Iterations != 2 {
		t.Errorf("server iterations = %d, want 2", server.Iterations)
	}
	if server.AppBytes != 17 {
		t.Errorf("server app bytes = %d, want 17", server.AppBytes)
	}
	if server.Remote != "127.0.0.1:54321" {
		t.Errorf("server remote = %q", server.Remote)
	}

	client := stats.Connections[clientConn]
	if client == nil {
		t.Fatal("client connection missing")
	}
	if client.Iterations != 0 {
		t.Errorf("failed handshake should report no iterations, got %d", client.Iterations)
	}
	if client.Role != log.RoleClient {
		t.Errorf("client role = %v", client.Role)
	}
	if !stats.TimeRange.Start.Equal(captureStart) {
		t.Errorf("TimeRange.Start = %v", stats.TimeRange.Start)
	}
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestCapture(t, append(echoSession(), failedClient()...))

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 9",
		"RECORD:",
		"TRANSPORT:",
		"handshake:",
		"Connections: 2",
		"[abc12345] SERVER",
		"Handshake: 2 iterations",
		"[def67890] CLIENT",
		"Handshake: incomplete",
		"Payload: 17 bytes",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}

	// Connections are listed in order of first appearance.
	if strings.Index(output, "[abc12345]") > strings.Index(output, "[def67890]") {
		t.Error("connections not ordered by first seen")
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := createTestCapture(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Total Events: 0") {
		t.Errorf("expected zero events, got: %s", output)
	}
	if strings.Contains(output, "Time Range") {
		t.Error("empty capture should not print a time range")
	}
}
