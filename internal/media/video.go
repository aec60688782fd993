package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jarvl/sticker-telegram-bot/internal/metrics"
)

// Video sticker constraints imposed by Telegram.
const (
	// MaxClipBytes is the hard ceiling on an encoded video sticker.
	MaxClipBytes = 256 * 1024

	// MaxClipSeconds is the longest a video sticker may run. Longer
	// sources are sped up uniformly rather than truncated.
	MaxClipSeconds = 3.0

	// OutputFrameRate is the fixed frame rate of the encoded clip.
	OutputFrameRate = 30

	// videoCRF is the constant-quality factor for libvpx-vp9. No target
	// bitrate is set; quality is fixed and size is checked afterwards.
	videoCRF = 30

	// TranscodeTimeout bounds the external encode. An unbounded ffmpeg
	// hang would otherwise pin the submission forever.
	TranscodeTimeout = 45 * time.Second
)

// SizeLimitError reports an encoded clip that exceeds MaxClipBytes.
// It is terminal: the user must supply a shorter or simpler source.
type SizeLimitError struct {
	Size int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("encoded animation is %d bytes, above the %d byte limit", e.Size, MaxClipBytes)
}

// TranscodeAnimation re-encodes arbitrary short video/animation bytes
// into a WEBM/VP9 clip meeting Telegram's video sticker contract:
// longer side at most 512 px, even dimensions, 30 fps, no audio,
// alpha-capable pixel format, at most 3 seconds and 256 KB.
//
// duration is the sender-declared clip length in seconds; when the
// clip runs longer than 3 seconds it is sped up by duration/3 so no
// content is cut. All temporary files and the ffmpeg process are
// released on every exit path, including timeout.
func TranscodeAnimation(ctx context.Context, data []byte, duration float64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, TranscodeTimeout)
	defer cancel()

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	inPath, cleanupIn, err := writeTempClip(data)
	if err != nil {
		return nil, err
	}
	defer cleanupIn()

	info, err := probeClip(ctx, inPath)
	if err != nil {
		return nil, err
	}
	if info.Duration > 0 {
		// The container knows better than the chat platform's metadata.
		duration = info.Duration
	}

	targetW, targetH := TargetDimensions(info.Width, info.Height)

	outFile, err := os.CreateTemp("", "sticker-clip-*.webm")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer func() {
		if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", outPath).Msg("Failed to remove transcode output")
		}
	}()

	args := buildTranscodeArgs(inPath, outPath, targetW, targetH, duration)

	log.Debug().Strs("args", args).Msg("Running ffmpeg transcode")

	encodeStart := time.Now()
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	encodeElapsed := time.Since(encodeStart)
	if err != nil {
		metrics.New("transcoder").
			Metric("TranscodeMs", float64(encodeElapsed.Milliseconds()), metrics.UnitMilliseconds).
			Count("TranscodeErrors").
			Flush()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg transcode timed out after %s: %w", TranscodeTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg transcode failed: %w\nOutput: %s", err, string(output))
	}

	encoded, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcoded clip: %w", err)
	}

	metrics.New("transcoder").
		Metric("TranscodeMs", float64(encodeElapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("ClipSizeBytes", float64(len(encoded)), metrics.UnitBytes).
		Count("Transcodes").
		Flush()

	if int64(len(encoded)) > MaxClipBytes {
		log.Warn().
			Int("output_size", len(encoded)).
			Int("limit", MaxClipBytes).
			Msg("Transcoded animation exceeds size ceiling")
		return nil, &SizeLimitError{Size: int64(len(encoded))}
	}

	log.Info().
		Int("input_size", len(data)).
		Int("output_size", len(encoded)).
		Int("width", targetW).
		Int("height", targetH).
		Float64("source_duration", duration).
		Dur("encode_time", encodeElapsed).
		Msg("Animation transcode complete")

	return encoded, nil
}

// TargetDimensions maps source dimensions onto the sticker canvas:
// the longer side becomes 512 and the other scales proportionally,
// both rounded down to even integers for the codec's chroma subsampling.
func TargetDimensions(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return CanvasSize, CanvasSize
	}
	if width >= height {
		h := height * CanvasSize / width
		return CanvasSize, evenDown(h)
	}
	w := width * CanvasSize / height
	return evenDown(w), CanvasSize
}

func evenDown(n int) int {
	n &^= 1
	if n < 2 {
		return 2
	}
	return n
}

// buildTranscodeArgs assembles the ffmpeg invocation. The speed-up
// filter (when needed) runs before scaling so the frame-rate cap applies
// to the already-compressed timeline.
func buildTranscodeArgs(inPath, outPath string, targetW, targetH int, duration float64) []string {
	vf := ""
	if duration > MaxClipSeconds {
		factor := duration / MaxClipSeconds
		vf = fmt.Sprintf("setpts=PTS/%.6f,", factor)
	}
	vf += fmt.Sprintf("scale=%d:%d,fps=%d", targetW, targetH, OutputFrameRate)

	return []string{
		"-i", inPath,
		"-vf", vf,
		"-c:v", "libvpx-vp9",
		"-pix_fmt", "yuva420p",
		"-crf", fmt.Sprintf("%d", videoCRF),
		"-b:v", "0",
		"-deadline", "good",
		"-cpu-used", "4",
		"-an",
		"-y", outPath,
	}
}

// writeTempClip writes raw clip bytes to a temp file and returns its
// path with a cleanup func.
func writeTempClip(data []byte) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", "sticker-src-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove transcode input")
		}
	}

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write clip to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return path, cleanup, nil
}
