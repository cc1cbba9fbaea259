package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Pipeline stage errors
	ErrExtractionFailed    = errors.New("audio extraction failed")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrGenerationFailed    = errors.New("title generation failed")
	ErrTimeout             = errors.New("timeout")

	// Model selection errors
	ErrModelSelectionInvalid = errors.New("invalid model selection")
	ErrModelNotFound         = errors.New("model not found")

	// Rename errors
	ErrRenameConflict = errors.New("target file already exists")
	ErrRenameFailed   = errors.New("rename failed")

	// Input and configuration errors
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrPromptAborted        = errors.New("input aborted")
	ErrNoVideos             = errors.New("no video files found")

	// Cache errors
	ErrCacheExpired = errors.New("cache expired")
	ErrCacheMiss    = errors.New("cache miss")

	// Dependency errors
	ErrFFmpegNotFound = errors.New("ffmpeg not found")
)

// kinds lists the sentinels Kind can report, most specific first.
var kinds = []error{
	ErrTimeout,
	ErrExtractionFailed,
	ErrTranscriptionFailed,
	ErrGenerationFailed,
	ErrModelSelectionInvalid,
	ErrRenameConflict,
	ErrRenameFailed,
	ErrConfigurationMissing,
	ErrPromptAborted,
	ErrNoVideos,
}

// Wrap tags err with a failure kind and the operation that produced it.
func Wrap(kind error, operation string, err error) error {
	operation = strings.TrimSpace(operation)
	switch {
	case err == nil && operation == "":
		return kind
	case err == nil:
		return fmt.Errorf("%w: %s", kind, operation)
	case operation == "":
		return fmt.Errorf("%w: %w", kind, err)
	default:
		return fmt.Errorf("%w: %s: %w", kind, operation, err)
	}
}

// Kind returns the failure kind carried by err, or nil when it has none.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// GenerationError is returned when the model provider rejects or fails a
// completion request.
type GenerationError struct {
	StatusCode int
	Message    string
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("title generation failed: status %d: %s", e.StatusCode, e.Message)
	}
	return "title generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error {
	return ErrGenerationFailed
}
