package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ClipInfo holds the stream properties the transcoder needs from an
// input clip.
type ClipInfo struct {
	Width     int
	Height    int
	Duration  float64 // seconds; 0 when the container does not declare one
	FrameRate float64
	Codec     string
}

// CheckFFmpegAvailable checks that ffmpeg and ffprobe are on the PATH.
// Called at startup so a missing install is reported before the first
// animation submission trips over it.
func CheckFFmpegAvailable() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		path, err := exec.LookPath(tool)
		if err != nil {
			return fmt.Errorf("%s not found in PATH: animation submissions will fail. Install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)", tool)
		}
		log.Debug().Str("path", path).Msgf("%s found", tool)
	}
	return nil
}

// ffprobeOutput mirrors the JSON structure ffprobe emits with
// -show_format -show_streams.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	Duration   string `json:"duration"`
}

// probeClip extracts dimensions, duration, and codec from a clip on disk
// using ffprobe.
func probeClip(ctx context.Context, path string) (*ClipInfo, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	// Output captures stderr into the ExitError so the failure reason
	// (bad container, truncated file) reaches the log, while keeping it
	// out of the JSON on stdout.
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe failed: %w\nOutput: %s", err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &ClipInfo{}
	if probe.Format.Duration != "" {
		info.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if info.Width == 0 {
			info.Width = stream.Width
			info.Height = stream.Height
		}
		if info.Codec == "" {
			info.Codec = stream.CodecName
		}
		if info.FrameRate == 0 && stream.RFrameRate != "" {
			info.FrameRate = parseFrameRate(stream.RFrameRate)
		}
		// GIFs declare duration on the stream rather than the container.
		if info.Duration == 0 && stream.Duration != "" {
			info.Duration, _ = strconv.ParseFloat(stream.Duration, 64)
		}
	}

	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("no video stream found in %s", path)
	}

	log.Debug().
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("duration", info.Duration).
		Float64("frame_rate", info.FrameRate).
		Str("codec", info.Codec).
		Msg("Clip probed")

	return info, nil
}

// parseFrameRate parses frame rate from ffprobe format (e.g. "30/1" -> 30.0).
func parseFrameRate(value string) float64 {
	parts := strings.Split(value, "/")
	if len(parts) == 2 {
		num, _ := strconv.ParseFloat(parts[0], 64)
		den, _ := strconv.ParseFloat(parts[1], 64)
		if den != 0 {
			return num / den
		}
	}
	rate, _ := strconv.ParseFloat(value, 64)
	return rate
}
