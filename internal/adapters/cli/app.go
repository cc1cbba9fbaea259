package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/devbush/vidtitle/internal/adapters/cache"
	"github.com/devbush/vidtitle/internal/adapters/ffmpeg"
	"github.com/devbush/vidtitle/internal/adapters/fsrename"
	"github.com/devbush/vidtitle/internal/adapters/openai"
	"github.com/devbush/vidtitle/internal/adapters/openrouter"
	"github.com/devbush/vidtitle/internal/adapters/whisper"
	"github.com/devbush/vidtitle/internal/application"
	"github.com/devbush/vidtitle/internal/config"
	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/i18n"
	"github.com/devbush/vidtitle/internal/logging"
	"github.com/devbush/vidtitle/internal/ports"
)

// App holds the dependencies every command needs. The title pipeline,
// which requires API keys, is built separately by NewPipeline.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Cache    ports.CacheStore
	Files    *fsrename.Files
	Whisper  *whisper.Transcriber
	FFmpeg   *ffmpeg.Extractor
	CacheSvc *application.CacheService

	logs io.Closer
}

// NewApp creates and wires up the shared dependencies
func NewApp() (*App, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", config.ConfigPath(), err)
	}

	logger, logs, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	ttl, _ := cfg.GetCacheTTL() // validated above
	cacheStore := cache.NewFileCache(nil, config.CacheDir())

	return &App{
		Config:   cfg,
		Logger:   logger,
		Cache:    cacheStore,
		Files:    fsrename.New(nil),
		Whisper:  whisper.NewTranscriber("", cfg.Paths.Whisper),
		FFmpeg:   ffmpeg.NewExtractor(cfg.Paths.FFmpeg, audioFormat(cfg), ""),
		CacheSvc: application.NewCacheService(cacheStore, ttl),
		logs:     logs,
	}, nil
}

// Close flushes and closes the run log
func (a *App) Close() error {
	if a.logs == nil {
		return nil
	}
	return a.logs.Close()
}

// RunOptions are the per-invocation choices of the title commands
type RunOptions struct {
	Model         string // OpenRouter model, overrides config
	Language      string // prompt and interface language
	AudioLanguage string // spoken language hint, empty for auto-detect
	NoCache       bool
}

// Pipeline is a fully wired title run
type Pipeline struct {
	Batch  *application.BatchOrchestrator
	Models *application.ModelSelector
	logger *slog.Logger
}

// logSummary records how the run went and which model wrote the titles
func (p *Pipeline) logSummary(processed, failed int, outcomes []domain.RenameOutcome) {
	model, ok := p.Models.Selected()
	if !ok {
		model = "none"
	}
	renamed := 0
	for _, o := range outcomes {
		if o.OK() {
			renamed++
		}
	}
	p.logger.Info("run finished", "model", model, "processed", processed, "failed", failed, "renamed", renamed)
}

// NewPipeline checks keys and external tools and wires the title services
// around console.
func (a *App) NewPipeline(console *Console, opts RunOptions) (*Pipeline, error) {
	cfg := a.Config

	secrets, err := cfg.LoadSecrets()
	if err != nil {
		return nil, err
	}
	if err := openrouter.ValidateBaseURL(cfg.OpenRouter.BaseURL, cfg.OpenRouter.AllowedHosts); err != nil {
		return nil, domain.Wrap(domain.ErrConfigurationMissing, "", err)
	}

	if !a.FFmpeg.IsAvailable() {
		return nil, fmt.Errorf("%w\n%s", domain.ErrFFmpegNotFound, a.FFmpeg.Instructions())
	}

	var transcriber ports.Transcriber
	switch cfg.Defaults.Transcriber {
	case config.TranscriberWhisper:
		if a.Whisper.BinaryPath() == "" {
			return nil, domain.Wrap(domain.ErrConfigurationMissing, "whisper.cpp binary not found (set paths.whisper)", nil)
		}
		if !a.Whisper.IsModelDownloaded(whisperModel(cfg)) {
			return nil, fmt.Errorf("%w: %s (run 'vidtitle whisper download %s')", domain.ErrModelNotFound, whisperModel(cfg), whisperModel(cfg))
		}
		transcriber = a.Whisper
	default:
		transcriber = openai.NewTranscriber(secrets.OpenAIKey, "")
	}

	ttl, _ := cfg.GetCacheTTL()
	transcribeSvc := application.NewTranscribeService(a.Cache, a.FFmpeg, transcriber, ttl, a.Logger)

	completer := openrouter.New(secrets.OpenRouterKey, cfg.OpenRouter.BaseURL, cfg.GenerationTimeout())
	titles := application.NewTitleGenerator(completer, i18n.PromptTemplate, application.TitleGeneratorOptions{
		MaxLength:   cfg.Defaults.MaxTitleLength,
		Temperature: cfg.OpenRouter.Temperature,
		MaxTokens:   cfg.OpenRouter.MaxTokens,
	}, console, a.Logger)

	model := opts.Model
	if model == "" {
		model = cfg.Defaults.Model
	}
	models := application.NewModelSelector(cfg.Catalog(), model, console, console)

	processor := application.NewVideoProcessor(transcribeSvc, titles, models, console, a.Logger, application.ProcessorOptions{
		Language:          opts.Language,
		TranscribeModel:   whisperModel(cfg),
		TranscribeLang:    opts.AudioLanguage,
		NoCache:           opts.NoCache,
		ItemTimeout:       cfg.ItemTimeout(),
		TranscribeTimeout: cfg.TranscriptionTimeout(),
	})

	a.Logger.Info("pipeline ready",
		"transcriber", transcriber.Name(),
		"model", model,
		"language", opts.Language,
		"no_cache", opts.NoCache,
	)

	return &Pipeline{
		Batch:  application.NewBatchOrchestrator(processor, a.Files, console, console, a.Logger),
		Models: models,
		logger: a.Logger,
	}, nil
}

// audioFormat picks what ffmpeg writes: compact mp3 for the upload limit of
// the hosted API, 16 kHz wav for whisper.cpp.
func audioFormat(cfg *config.Config) ports.AudioFormat {
	if cfg.Defaults.Transcriber == config.TranscriberWhisper {
		return ports.AudioWAV
	}
	return ports.AudioMP3
}

func whisperModel(cfg *config.Config) string {
	if cfg.Defaults.WhisperModel != "" {
		return cfg.Defaults.WhisperModel
	}
	return whisper.DefaultModel
}

var globalApp *App

// GetApp returns the global app instance, creating it if needed
func GetApp() (*App, error) {
	if globalApp == nil {
		app, err := NewApp()
		if err != nil {
			return nil, err
		}
		globalApp = app
	}
	return globalApp, nil
}
