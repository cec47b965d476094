package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/models"
)

func TestWorkspacePathsAreUnique(t *testing.T) {
	dir := t.TempDir()

	a := NewWorkspace(dir, 100)
	b := NewWorkspace(dir, 100)

	pathA := a.Path("temp_image", "png")
	pathB := b.Path("temp_image", "png")

	if pathA == pathB {
		t.Errorf("two workspaces produced the same path: %s", pathA)
	}
	if !strings.HasPrefix(filepath.Base(pathA), "temp_image_") {
		t.Errorf("unexpected path shape: %s", pathA)
	}
	if !strings.HasSuffix(pathA, ".png") {
		t.Errorf("missing extension: %s", pathA)
	}
}

func TestWorkspaceCleanupAttemptsEveryPath(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), 100)

	paths := []string{"/ws/a.png", "/ws/b.mp3", "/ws/c.mp4", "/ws/d.srt"}
	for _, p := range paths {
		ws.Register(p)
	}

	var attempted []string
	ws.remove = func(path string) error {
		attempted = append(attempted, path)
		// Second path fails; the rest must still be attempted
		if path == paths[1] {
			return errors.New("permission denied")
		}
		return nil
	}

	ws.Cleanup()

	if len(attempted) != len(paths) {
		t.Fatalf("expected %d deletion attempts, got %d", len(paths), len(attempted))
	}
	for i, p := range paths {
		if attempted[i] != p {
			t.Errorf("attempt %d: expected %s, got %s", i, p, attempted[i])
		}
	}
}

func TestWorkspaceCleanupRunsOnce(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), 100)
	ws.Register("/ws/a.png")

	count := 0
	ws.remove = func(string) error {
		count++
		return nil
	}

	ws.Cleanup()
	ws.Cleanup()

	if count != 1 {
		t.Errorf("expected exactly 1 deletion attempt, got %d", count)
	}
}

func TestWorkspaceRegisterDeduplicates(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), 100)
	ws.Register("/ws/a.png")
	ws.Register("/ws/a.png")

	count := 0
	ws.remove = func(string) error {
		count++
		return nil
	}
	ws.Cleanup()

	if count != 1 {
		t.Errorf("expected 1 attempt for a twice-registered path, got %d", count)
	}
}

func TestWorkspaceCleanupRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	ws := NewWorkspace(dir, 100)

	path, err := ws.Save("temp_image", "png", []byte("content"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !FileExists(path) {
		t.Fatal("saved file should exist before cleanup")
	}

	ws.Cleanup()

	if FileExists(path) {
		t.Error("saved file should be gone after cleanup")
	}
}

func TestWorkspaceSizeGuardBoundary(t *testing.T) {
	dir := t.TempDir()
	const limitMB = 1

	atLimit := bytes.Repeat([]byte{0xAB}, limitMB*1024*1024)
	overLimit := append(bytes.Repeat([]byte{0xAB}, limitMB*1024*1024), 0xCD)

	t.Run("Exactly at ceiling passes", func(t *testing.T) {
		ws := NewWorkspace(dir, limitMB)
		defer ws.Cleanup()

		if _, err := ws.Save("temp_audio", "mp3", atLimit); err != nil {
			t.Errorf("file of exactly the ceiling should pass, got %v", err)
		}
	})

	t.Run("One byte over fails", func(t *testing.T) {
		ws := NewWorkspace(dir, limitMB)
		defer ws.Cleanup()

		_, err := ws.Save("temp_audio", "mp3", overLimit)
		var tooLarge *models.FileTooLargeError
		if !errors.As(err, &tooLarge) {
			t.Fatalf("expected FileTooLargeError, got %v", err)
		}
		if tooLarge.MaxMB != limitMB {
			t.Errorf("expected MaxMB %d, got %d", limitMB, tooLarge.MaxMB)
		}
	})
}

func TestWorkspaceOversizedFileStillCleanedUp(t *testing.T) {
	dir := t.TempDir()
	ws := NewWorkspace(dir, 1)

	_, err := ws.Save("temp_audio", "mp3", bytes.Repeat([]byte{1}, 1024*1024+1))
	if err == nil {
		t.Fatal("expected size guard to reject")
	}

	ws.Cleanup()

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("failed to read dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("rejected file should be cleaned up, found %d entries", len(entries))
	}
}
