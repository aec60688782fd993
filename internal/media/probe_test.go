package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestProbeClip_InvalidInputReportsReason(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	path := filepath.Join(t.TempDir(), "junk.mp4")
	if err := os.WriteFile(path, []byte("this is not a video"), 0o644); err != nil {
		t.Fatalf("writing junk file: %v", err)
	}

	_, err := probeClip(context.Background(), path)
	if err == nil {
		t.Fatal("expected probe of junk bytes to fail")
	}

	// The error must carry ffprobe's diagnostic, not just the exit code.
	msg := err.Error()
	if !strings.Contains(msg, "ffprobe failed") {
		t.Errorf("unexpected error shape: %v", err)
	}
	if strings.TrimSpace(strings.TrimPrefix(msg, "ffprobe failed:")) == "exit status 1" {
		t.Errorf("error lost the stderr diagnostic: %v", err)
	}
}
