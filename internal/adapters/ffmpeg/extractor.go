package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/devbush/vidtitle/internal/config"
	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// Extractor implements ports.AudioExtractor with the ffmpeg binary
type Extractor struct {
	configured string
	format     ports.AudioFormat
	tempDir    string
	binPath    string
}

// NewExtractor creates an extractor. configuredPath overrides binary
// discovery when set. Audio is written as format into tempDir, or the
// system temp directory when tempDir is empty.
func NewExtractor(configuredPath string, format ports.AudioFormat, tempDir string) *Extractor {
	if format == "" {
		format = ports.AudioWAV
	}
	return &Extractor{
		configured: strings.TrimSpace(configuredPath),
		format:     format,
		tempDir:    tempDir,
	}
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func (e *Extractor) findBinary() string {
	if e.configured != "" {
		if _, err := os.Stat(e.configured); err == nil {
			return e.configured
		}
		if path, err := exec.LookPath(e.configured); err == nil {
			return path
		}
		return ""
	}

	// Check bundled location first
	bundled := filepath.Join(config.BinDir(), binaryName())
	if _, err := os.Stat(bundled); err == nil {
		return bundled
	}

	// Check system PATH
	if path, err := exec.LookPath(binaryName()); err == nil {
		return path
	}

	return ""
}

// BinaryPath returns the resolved ffmpeg path, or "" when it is missing
func (e *Extractor) BinaryPath() string {
	if e.binPath != "" {
		return e.binPath
	}
	e.binPath = e.findBinary()
	return e.binPath
}

// IsAvailable checks if ffmpeg can be run
func (e *Extractor) IsAvailable() bool {
	return e.BinaryPath() != ""
}

// Format returns the audio container the extractor writes
func (e *Extractor) Format() ports.AudioFormat {
	return e.format
}

// ExtractAudio writes the audio track of videoPath as 16 kHz mono to a new
// temporary file. On failure no file is left behind.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	bin := e.BinaryPath()
	if bin == "" {
		return "", domain.ErrFFmpegNotFound
	}

	out, err := os.CreateTemp(e.tempDir, "vidtitle-*."+string(e.format))
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	outPath := out.Name()
	out.Close()

	cmd := exec.CommandContext(ctx, bin, e.args(videoPath, outPath)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(outPath)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg extract audio: %w\n%s", err, tail(string(b), 20))
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg extract audio: no audio written for %s", filepath.Base(videoPath))
	}

	return outPath, nil
}

func (e *Extractor) args(in, out string) []string {
	args := []string{
		"-y",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
	}
	if e.format == ports.AudioMP3 {
		// keeps uploads well under the 25MB transcription API limit
		args = append(args, "-b:a", "64k", "-f", "mp3")
	} else {
		args = append(args, "-f", "wav")
	}
	return append(args, out)
}

// Instructions returns platform-specific ffmpeg installation instructions
func (e *Extractor) Instructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install ffmpeg with Homebrew:\n  brew install ffmpeg"
	case "windows":
		return "Install ffmpeg with winget or Chocolatey:\n  winget install ffmpeg\n  choco install ffmpeg\n" +
			"or place ffmpeg.exe in " + config.BinDir()
	default:
		return "Install ffmpeg with your package manager:\n  sudo apt install ffmpeg\n  sudo dnf install ffmpeg\n" +
			"or place the ffmpeg binary in " + config.BinDir()
	}
}

// tail keeps the last n lines of ffmpeg output, where the error usually is
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

var _ ports.AudioExtractor = (*Extractor)(nil)
