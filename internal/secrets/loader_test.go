package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	t.Setenv("TEST_SECRET_KEY", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{
			name: "file wins over inline value",
			src:  Source{Name: "gemini api key", File: keyFile, Value: "inline", Env: "TEST_SECRET_KEY"},
			want: "from-file",
		},
		{
			name: "inline wins over environment",
			src:  Source{Value: " inline ", Env: "TEST_SECRET_KEY"},
			want: "inline",
		},
		{
			name: "environment fallback",
			src:  Source{Env: "TEST_SECRET_KEY"},
			want: "from-env",
		},
		{
			name:    "missing file",
			src:     Source{Name: "search api key", File: filepath.Join(dir, "missing"), Value: "inline"},
			wantErr: "reading search api key",
		},
		{
			name:    "empty file",
			src:     Source{File: emptyFile},
			wantErr: "is empty",
		},
		{
			name:    "unset environment",
			src:     Source{Name: "engine id", Env: "TEST_SECRET_UNSET"},
			wantErr: "engine id is not configured (set TEST_SECRET_UNSET)",
		},
		{
			name:    "nothing configured",
			src:     Source{},
			wantErr: "secret is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
