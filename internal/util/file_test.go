package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"clip.mkv", "clip"},
		{"/videos/clip.final.mp4", "clip.final"},
		{"/videos/noext", "noext"},
		{"relative/dir/movie.AVI", "movie"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := GetFileStem(tt.path); got != tt.want {
				t.Errorf("GetFileStem(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestHasVideoExtension(t *testing.T) {
	for _, p := range []string{"a.mkv", "b.MP4", "c.avi", "d.webm"} {
		if !HasVideoExtension(p) {
			t.Errorf("HasVideoExtension(%q) = false", p)
		}
	}
	for _, p := range []string{"a.txt", "b", "c.srt", ".mkv.part"} {
		if HasVideoExtension(p) {
			t.Errorf("HasVideoExtension(%q) = true", p)
		}
	}
}

func TestIsVideoFile(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(video, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsVideoFile(video) {
		t.Error("expected clip.mkv to be a video file")
	}
	if IsVideoFile(filepath.Join(dir, "missing.mkv")) {
		t.Error("missing file should not be a video file")
	}

	subdir := filepath.Join(dir, "folder.mkv")
	if err := os.Mkdir(subdir, 0755); err != nil {
		t.Fatal(err)
	}
	if IsVideoFile(subdir) {
		t.Error("directory should not be a video file")
	}
}

func TestEnsureDirectoryIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	for i := 0; i < 2; i++ {
		if err := EnsureDirectory(dir); err != nil {
			t.Fatalf("EnsureDirectory call %d: %v", i+1, err)
		}
	}
	if !DirectoryExists(dir) {
		t.Error("directory was not created")
	}
}

func TestEnsureDirectoryWritable(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDirectoryWritable(tmpDir); err != nil {
		t.Errorf("Expected no error for writable dir, got %v", err)
	}

	if err := EnsureDirectoryWritable("/nonexistent/directory/path"); err == nil {
		t.Error("Expected error for non-existent directory")
	}

	tmpFile := filepath.Join(tmpDir, "testfile")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDirectoryWritable(tmpFile); err == nil {
		t.Error("Expected error for file instead of directory")
	}

	entries, _ := os.ReadDir(tmpDir)
	if len(entries) != 1 {
		t.Errorf("probe file left behind: %d entries", len(entries))
	}
}

func TestGetAvailableSpace(t *testing.T) {
	space := GetAvailableSpace(t.TempDir())
	if space == 0 {
		t.Log("GetAvailableSpace returned 0, this might be expected on some systems")
	}

	if space := GetAvailableSpace("/nonexistent/path"); space != 0 {
		t.Errorf("Expected 0 for invalid path, got %d", space)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()

	if !CheckDiskSpace(dir, 0, nil) {
		t.Error("zero requirement should always pass")
	}

	if !CheckDiskSpace("/nonexistent/path", 1<<62, nil) {
		t.Error("unknown free space should not block")
	}

	if GetAvailableSpace(dir) > 0 && CheckDiskSpace(dir, ^uint64(0), nil) {
		t.Error("impossible requirement should fail")
	}

	var calls int
	CheckDiskSpace(dir, 0, func(string, ...any) { calls++ })
	if calls != 1 {
		t.Errorf("logger called %d times, want 1", calls)
	}
}
