package domain

import "testing"

func TestParseWireStatus_Known(t *testing.T) {
	cases := []struct {
		raw  string
		want TaskStatus
	}{
		{"START", StatusRunning},
		{"COMPLETED", StatusCompleted},
		{"FAILED", StatusFailed},
	}

	for _, c := range cases {
		got, err := ParseWireStatus(c.raw)
		if err != nil {
			t.Fatalf("ParseWireStatus(%q) err = %v, want nil", c.raw, err)
		}
		if got != c.want {
			t.Fatalf("ParseWireStatus(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestParseWireStatus_Unknown(t *testing.T) {
	for _, raw := range []string{"", "start", "FINISH", "RUNNING", "PENDING", "UNKNOWN", "START "} {
		if _, err := ParseWireStatus(raw); err == nil {
			t.Fatalf("ParseWireStatus(%q) err = nil, want non-nil", raw)
		}
	}
}

func TestStatusRank(t *testing.T) {
	if StatusPending.Rank() >= StatusRunning.Rank() {
		t.Fatal("PENDING must rank below RUNNING")
	}
	if StatusRunning.Rank() >= StatusCompleted.Rank() {
		t.Fatal("RUNNING must rank below COMPLETED")
	}
	if StatusCompleted.Rank() != StatusFailed.Rank() {
		t.Fatal("COMPLETED and FAILED must share a rank")
	}
	if TaskStatus("bogus").Rank() != -1 {
		t.Fatalf("unknown status rank = %d, want -1", TaskStatus("bogus").Rank())
	}
}
