package storage

import (
	"context"
	"testing"
)

func TestExportKey(t *testing.T) {
	if got := ExportKey("d1", 3, "hierarchy.json"); got != "draws/d1/v3/hierarchy.json" {
		t.Errorf("ExportKey = %q", got)
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "draws/d1/v1/draw.json", "https://cdn.example.com/draws/d1/v1/draw.json"},
		{"https://cdn.example.com/exports/", "/draws/a.json", "https://cdn.example.com/exports/draws/a.json"},
		{"", "draws/a.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		if got := publicURL(tt.base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestNewR2StoreRequiresCredentials(t *testing.T) {
	if _, err := NewR2Store(context.Background(), R2Config{BucketName: "b"}); err == nil {
		t.Errorf("NewR2Store accepted a config without account and keys")
	}
}
