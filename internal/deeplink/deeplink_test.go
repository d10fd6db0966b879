package deeplink

import "testing"

func TestTaskDetail_RoundTrip(t *testing.T) {
	uri := TaskDetail("abc-123")
	if uri != "mlnotify://tasks/taskDetail/abc-123" {
		t.Fatalf("TaskDetail() = %q", uri)
	}

	got, err := ParseTaskDetail(uri)
	if err != nil {
		t.Fatalf("ParseTaskDetail(%q) err = %v", uri, err)
	}
	if got != "abc-123" {
		t.Fatalf("ParseTaskDetail(%q) = %q, want abc-123", uri, got)
	}
}

func TestParseTaskDetail_Rejects(t *testing.T) {
	bad := []string{
		"",
		"http://tasks/taskDetail/abc",
		"mlnotify://other/taskDetail/abc",
		"mlnotify://tasks/settings/abc",
		"mlnotify://tasks/taskDetail",
		"mlnotify://tasks/taskDetail/abc/extra",
	}
	for _, uri := range bad {
		if _, err := ParseTaskDetail(uri); err == nil {
			t.Fatalf("ParseTaskDetail(%q) err = nil, want non-nil", uri)
		}
	}
}
