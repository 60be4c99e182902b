package strings

import "testing"

func TestPluralize(t *testing.T) {
	tests := []struct {
		word  string
		count int64
		want  string
	}{
		{"file", 0, "files"},
		{"file", 1, "file"},
		{"file", 2, "files"},
		{"folder", 100, "folders"},
	}
	for _, tt := range tests {
		if got := Pluralize(tt.word, tt.count); got != tt.want {
			t.Errorf("Pluralize(%q, %d) = %q, want %q", tt.word, tt.count, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
