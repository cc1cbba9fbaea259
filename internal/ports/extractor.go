package ports

import "context"

// AudioFormat selects the container written by an AudioExtractor
type AudioFormat string

const (
	AudioWAV AudioFormat = "wav"
	AudioMP3 AudioFormat = "mp3"
)

// AudioExtractor pulls the audio track out of a video file
type AudioExtractor interface {
	// ExtractAudio writes the audio of videoPath to a temporary file and
	// returns its path. The caller owns the file and must remove it.
	ExtractAudio(ctx context.Context, videoPath string) (string, error)

	// IsAvailable checks if the extraction tool is installed
	IsAvailable() bool

	// BinaryPath returns the resolved path of the extraction tool
	BinaryPath() string

	// Instructions returns platform-specific installation instructions
	Instructions() string
}
