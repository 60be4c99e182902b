package r2

import (
	"context"
	"strings"
	"testing"
)

func TestEndpointURL(t *testing.T) {
	got := endpointURL("abc123def456")
	want := "https://abc123def456.r2.cloudflarestorage.com"
	if got != want {
		t.Errorf("endpointURL = %q, want %q", got, want)
	}
}

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, "", "key", "secret", "bucket"); err == nil {
		t.Error("expected error for empty account id")
	} else if !strings.Contains(err.Error(), "account id") {
		t.Errorf("error %q should name the account id", err)
	}

	if _, err := NewClient(ctx, "acct", "key", "secret", ""); err == nil {
		t.Error("expected error for empty bucket")
	} else if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("error %q should name the bucket", err)
	}
}

func TestNewClientFromAPI(t *testing.T) {
	client := NewClientFromAPI(newFakeS3(), "my-bucket")
	if client.Bucket() != "my-bucket" {
		t.Errorf("Bucket() = %q, want my-bucket", client.Bucket())
	}
}
