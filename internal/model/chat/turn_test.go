package chat

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, time.June, 12, 15, 45, 0, 0, time.UTC)
	if got := FormatTime(at); got != "03:45 PM | Jun 12" {
		t.Fatalf("unexpected display timestamp: %q", got)
	}
}

func TestFormatTimeMorningZeroPadded(t *testing.T) {
	at := time.Date(2024, time.January, 2, 9, 5, 0, 0, time.UTC)
	if got := FormatTime(at); got != "09:05 AM | Jan 02" {
		t.Fatalf("unexpected display timestamp: %q", got)
	}
}

func TestNewTurnsAreExactSwaps(t *testing.T) {
	now := time.Now()

	in := NewUserTurn("alice", "Hello", now)
	out := NewAssistantTurn("alice", "Hi there", now)

	if in.Sender != "alice" || in.Receiver != AssistantName {
		t.Fatalf("unexpected inbound pair: %s -> %s", in.Sender, in.Receiver)
	}
	if out.Sender != AssistantName || out.Receiver != "alice" {
		t.Fatalf("unexpected outbound pair: %s -> %s", out.Sender, out.Receiver)
	}
	if in.Sender != out.Receiver || in.Receiver != out.Sender {
		t.Fatal("turn pairs must be exact swaps")
	}

	if in.Role != RoleUser {
		t.Fatalf("inbound role: got %q want %q", in.Role, RoleUser)
	}
	if out.Role != RoleAssistant {
		t.Fatalf("outbound role: got %q want %q", out.Role, RoleAssistant)
	}

	if in.Timestamp != out.Timestamp {
		t.Fatalf("timestamps differ within one cycle: %q vs %q", in.Timestamp, out.Timestamp)
	}
}
