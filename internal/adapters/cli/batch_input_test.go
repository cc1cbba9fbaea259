package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseInputFile(t *testing.T) {
	t.Run("parses file with comments, blank lines and relative paths", func(t *testing.T) {
		content := `# Exported from the editor
intro.mp4
/abs/path/outro.MOV

# Not a video
notes.txt
  "with spaces.mkv"
sub/clip.avi
`
		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "videos.txt")
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		paths, err := ParseInputFile(filePath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			filepath.Join(tmpDir, "intro.mp4"),
			"/abs/path/outro.MOV",
			filepath.Join(tmpDir, "with spaces.mkv"),
			filepath.Join(tmpDir, "sub", "clip.avi"),
		}
		if !reflect.DeepEqual(paths, expected) {
			t.Errorf("ParseInputFile() = %v, want %v", paths, expected)
		}
	})

	t.Run("returns error for nonexistent file", func(t *testing.T) {
		_, err := ParseInputFile("/nonexistent/path/file.txt")
		if err == nil {
			t.Error("expected error for nonexistent file, got nil")
		}
	})
}

func TestCollectInputs(t *testing.T) {
	t.Run("combines folder listing and file with deduplication", func(t *testing.T) {
		tmpDir := t.TempDir()
		content := "a.mp4\nc.mp4\n./a.mp4\n"
		filePath := filepath.Join(tmpDir, "videos.txt")
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		listed := []string{filepath.Join(tmpDir, "a.mp4"), filepath.Join(tmpDir, "b.mp4")}

		paths, err := CollectInputs(listed, filePath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			filepath.Join(tmpDir, "a.mp4"),
			filepath.Join(tmpDir, "b.mp4"),
			filepath.Join(tmpDir, "c.mp4"),
		}
		if !reflect.DeepEqual(paths, expected) {
			t.Errorf("CollectInputs() = %v, want %v", paths, expected)
		}
	})

	t.Run("works with paths only when filePath is empty", func(t *testing.T) {
		paths, err := CollectInputs([]string{"/v/one.mp4", "/v/one.mp4", "/v/two.mp4"}, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{"/v/one.mp4", "/v/two.mp4"}
		if !reflect.DeepEqual(paths, expected) {
			t.Errorf("CollectInputs() = %v, want %v", paths, expected)
		}
	})
}

func TestCleanPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"  /videos/a.mp4 ", "/videos/a.mp4"},
		{`"/videos/my clip.mp4"`, "/videos/my clip.mp4"},
		{"'/videos/b.mp4'", "/videos/b.mp4"},
		{`"unbalanced.mp4`, `"unbalanced.mp4`},
		{"~/Movies", filepath.Join(home, "Movies")},
		{"", ""},
	}

	for _, tt := range tests {
		if got := cleanPath(tt.input); got != tt.want {
			t.Errorf("cleanPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
