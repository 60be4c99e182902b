package validation

import "testing"

func TestValidateFilename(t *testing.T) {
	valid := []string{
		"file.txt",
		"my-file.txt",
		"my_file.txt",
		"file.v1.2.3.txt",
		"report..v2.csv",
		".hidden",
		"name with spaces.pdf",
	}
	for _, name := range valid {
		if err := ValidateFilename(name); err != nil {
			t.Errorf("ValidateFilename(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"..",
		"dir/file.txt",
		`dir\file.txt`,
		`dir/sub\file.txt`,
		"../etc/passwd",
		"/etc/passwd",
		"file\x00.txt",
	}
	for _, name := range invalid {
		if err := ValidateFilename(name); err == nil {
			t.Errorf("ValidateFilename(%q) = nil, want error", name)
		}
	}
}
