package media

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckFFmpegAvailable(t *testing.T) {
	// Passes if FFmpeg is installed, or reports gracefully if not.
	err := CheckFFmpegAvailable()
	if err != nil {
		t.Logf("FFmpeg not available (expected in some environments): %v", err)
	} else {
		t.Log("FFmpeg is available")
	}
}

func TestTargetDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape 2:1", 1000, 500, 512, 256},
		{"portrait 1:2", 500, 1000, 256, 512},
		{"square", 800, 800, 512, 512},
		{"odd result rounds down", 1000, 333, 512, 170},
		{"portrait odd rounds down", 333, 1000, 170, 512},
		{"tiny", 10, 10, 512, 512},
		{"very thin", 2048, 10, 512, 2},
		{"zero falls back to square", 0, 0, 512, 512},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotW, gotH := TargetDimensions(tc.w, tc.h)
			if gotW != tc.wantW || gotH != tc.wantH {
				t.Errorf("TargetDimensions(%d, %d) = (%d, %d), want (%d, %d)",
					tc.w, tc.h, gotW, gotH, tc.wantW, tc.wantH)
			}
			if gotW%2 != 0 || gotH%2 != 0 {
				t.Errorf("TargetDimensions(%d, %d) produced odd dimension (%d, %d)",
					tc.w, tc.h, gotW, gotH)
			}
		})
	}
}

func TestBuildTranscodeArgs_ShortClip(t *testing.T) {
	args := buildTranscodeArgs("in.gif", "out.webm", 512, 256, 2.0)

	vf := argValue(t, args, "-vf")
	if strings.Contains(vf, "setpts") {
		t.Errorf("clip under the duration cap should not be sped up, got -vf %q", vf)
	}
	if !strings.Contains(vf, "scale=512:256") {
		t.Errorf("expected explicit scale in -vf, got %q", vf)
	}
	if !strings.Contains(vf, "fps=30") {
		t.Errorf("expected fixed output frame rate in -vf, got %q", vf)
	}

	assertPair(t, args, "-c:v", "libvpx-vp9")
	assertPair(t, args, "-pix_fmt", "yuva420p")
	assertPair(t, args, "-b:v", "0")
	assertPair(t, args, "-y", "out.webm")
	if !contains(args, "-an") {
		t.Error("expected audio stream to be dropped (-an)")
	}
}

func TestBuildTranscodeArgs_LongClipSpedUp(t *testing.T) {
	// A 5 second clip is compressed to 3 seconds: factor 5/3.
	args := buildTranscodeArgs("in.mp4", "out.webm", 512, 256, 5.0)

	vf := argValue(t, args, "-vf")
	if !strings.Contains(vf, "setpts=PTS/1.666667") {
		t.Errorf("expected setpts speed-up factor 1.666667, got -vf %q", vf)
	}
	// Speed-up must run before scaling in the filter chain.
	if strings.Index(vf, "setpts") > strings.Index(vf, "scale") {
		t.Errorf("setpts must precede scale, got -vf %q", vf)
	}
}

func TestBuildTranscodeArgs_ExactCapNotSpedUp(t *testing.T) {
	args := buildTranscodeArgs("in.mp4", "out.webm", 512, 512, 3.0)
	if vf := argValue(t, args, "-vf"); strings.Contains(vf, "setpts") {
		t.Errorf("3.0s clip is within the cap and must not be sped up, got %q", vf)
	}
}

func TestSizeLimitError(t *testing.T) {
	err := &SizeLimitError{Size: 300000}
	if !strings.Contains(err.Error(), "300000") {
		t.Errorf("error should carry the measured size, got %q", err.Error())
	}

	var sizeErr *SizeLimitError
	wrapped := error(err)
	if !errors.As(wrapped, &sizeErr) {
		t.Error("SizeLimitError should be matchable with errors.As")
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30.0},
		{"60000/1001", 59.94005994005994},
		{"25", 25.0},
		{"0/0", 0},
	}
	for _, tc := range tests {
		if got := parseFrameRate(tc.in); got != tc.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// argValue returns the value following flag in args.
func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func assertPair(t *testing.T, args []string, flag, want string) {
	t.Helper()
	if got := argValue(t, args, flag); got != want {
		t.Errorf("expected %s %s, got %s", flag, want, got)
	}
}

func contains(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
