package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"summary.csv", "summary.csv", false},
		{"../../etc/passwd", "passwd", false},
		{`..\..\boot.ini`, "boot.ini", false},
		{"game: 10/19.csv", "19.csv", false},
		{"bad:name?.csv", "bad_name_.csv", false},
		{"..", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := Sanitize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Sanitize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDirSaver_WritesAndAvoidsOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := DirSaver{Dir: dir}

	first, err := s.Save(context.Background(), "summary.csv", []byte("one"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := s.Save(context.Background(), "summary.csv", []byte("two"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if first != filepath.Join(dir, "summary.csv") {
		t.Errorf("Unexpected first path %s", first)
	}
	if second != filepath.Join(dir, "summary (1).csv") {
		t.Errorf("Unexpected second path %s", second)
	}

	data, _ := os.ReadFile(first)
	if string(data) != "one" {
		t.Errorf("Expected first file untouched, got %q", data)
	}
}

func TestDirSaver_RejectsBadName(t *testing.T) {
	_, err := DirSaver{Dir: t.TempDir()}.Save(context.Background(), "..", nil)
	if !errors.Is(err, ErrBadFilename) {
		t.Errorf("Expected ErrBadFilename, got %v", err)
	}
}

func TestWriteFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	if err := WriteFile(path, []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "x" {
		t.Errorf("Unexpected contents %q", data)
	}
}
