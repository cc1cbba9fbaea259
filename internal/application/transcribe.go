package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// TranscribeOptions configures the transcription
type TranscribeOptions struct {
	Model    string // local whisper model, ignored by remote backends
	Language string // empty for auto-detect
	NoCache  bool
	Timeout  time.Duration

	// OnStage is called when work on a stage starts
	OnStage func(domain.Stage)
}

// TranscribeResult contains the transcription result
type TranscribeResult struct {
	Transcript *domain.Transcript
	FromCache  bool
}

// TranscribeService turns a video into a transcript, reusing cached
// transcripts of unchanged files.
type TranscribeService struct {
	cache       ports.CacheStore
	extractor   ports.AudioExtractor
	transcriber ports.Transcriber
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// NewTranscribeService creates a new transcription service. cache may be nil.
func NewTranscribeService(
	cache ports.CacheStore,
	extractor ports.AudioExtractor,
	transcriber ports.Transcriber,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *TranscribeService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TranscribeService{
		cache:       cache,
		extractor:   extractor,
		transcriber: transcriber,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Transcribe extracts the audio of videoPath and transcribes it. The
// extracted audio is always removed before returning.
func (s *TranscribeService) Transcribe(ctx context.Context, videoPath string, opts TranscribeOptions) (*TranscribeResult, error) {
	stage := opts.OnStage
	if stage == nil {
		stage = func(domain.Stage) {}
	}

	key, keyErr := Fingerprint(videoPath)
	if keyErr != nil {
		s.logger.Debug("fingerprint failed", "path", videoPath, "error", keyErr)
	}

	// Check cache first (unless bypassed)
	if s.cache != nil && !opts.NoCache && keyErr == nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil && !cached.Transcript.IsEmpty() {
			s.logger.Debug("transcript cache hit", "path", videoPath, "key", key)
			return &TranscribeResult{Transcript: cached.Transcript, FromCache: true}, nil
		}
	}

	stage(domain.StageExtracting)
	audioPath, err := s.extractor.ExtractAudio(ctx, videoPath)
	if err != nil {
		return nil, classify(ctx, domain.ErrExtractionFailed, "extract audio", err)
	}
	defer func() {
		if rmErr := os.Remove(audioPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("failed to remove extracted audio", "path", audioPath, "error", rmErr)
		}
	}()

	stage(domain.StageTranscribing)
	tctx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	transcript, err := s.transcriber.Transcribe(tctx, audioPath, ports.TranscribeOpts{
		Model:    opts.Model,
		Language: opts.Language,
	})
	if err != nil {
		return nil, classify(tctx, domain.ErrTranscriptionFailed, s.transcriber.Name(), err)
	}
	if transcript.IsEmpty() {
		return nil, domain.Wrap(domain.ErrTranscriptionFailed, s.transcriber.Name(), errors.New("no speech recognized"))
	}
	if transcript.Backend == "" {
		transcript.Backend = s.transcriber.Name()
	}

	// Cache result (failures are non-fatal)
	if s.cache != nil && keyErr == nil {
		now := time.Now()
		item := &ports.CachedItem{
			Transcript: transcript,
			VideoPath:  videoPath,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, key, item); err != nil {
			s.logger.Warn("failed to cache transcript", "path", videoPath, "error", err)
		}
	}

	return &TranscribeResult{Transcript: transcript}, nil
}

// Fingerprint identifies a video file by its absolute path, size and
// modification time.
func Fingerprint(videoPath string) (string, error) {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano())))
	return hex.EncodeToString(sum[:16]), nil
}

// classify tags err with kind, or with ErrTimeout when ctx ran out of time.
func classify(ctx context.Context, kind error, operation string, err error) error {
	if errors.Is(err, domain.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.Wrap(domain.ErrTimeout, operation, err)
	}
	return domain.Wrap(kind, operation, err)
}
