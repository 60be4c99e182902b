package notify

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestShortenPath(t *testing.T) {
	tests := []struct {
		input string
		short bool // expect it to be shortened
	}{
		{"/short/path", false},
		{"/a/very/long/path/that/exceeds/the/maximum/length/for/notification/display/file.txt", true},
		{"C:\\Users\\TestUser\\Downloads\\file.txt", false},
	}

	for _, tt := range tests {
		result := shortenPath(tt.input)
		if tt.short && len(result) >= len(tt.input) {
			t.Errorf("shortenPath(%q) was not shortened: %q", tt.input, result)
		}
		if !tt.short && result != tt.input {
			t.Errorf("shortenPath(%q) changed a short path: %q", tt.input, result)
		}
	}
}

func TestSetEnabled(t *testing.T) {
	n := NewNotifier(true, nil)

	if !n.IsEnabled() {
		t.Error("Expected initially enabled")
	}

	n.SetEnabled(false)
	if n.IsEnabled() {
		t.Error("Expected disabled after SetEnabled(false)")
	}

	n.SetEnabled(true)
	if !n.IsEnabled() {
		t.Error("Expected enabled after SetEnabled(true)")
	}
}

func TestNotifierDisabledIsNoOp(t *testing.T) {
	// When disabled, notification methods should not panic or error even
	// without a logger or a notification daemon.
	n := NewNotifier(false, nil)

	n.SyncComplete(12, 1024)
	n.SyncFailed(1, 12)
	n.UploadComplete("report.pdf", "docs/report.pdf")
	n.DownloadComplete("clip.mp4", "/home/user/Downloads/clip.mp4")
}
