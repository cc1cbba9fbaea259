package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// mockCache is an in-memory ports.CacheStore
type mockCache struct {
	items map[string]*ports.CachedItem
}

func newMockCache() *mockCache {
	return &mockCache{items: make(map[string]*ports.CachedItem)}
}

func (m *mockCache) Get(ctx context.Context, key string) (*ports.CachedItem, error) {
	item, ok := m.items[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if time.Now().After(item.ExpiresAt) {
		return nil, domain.ErrCacheExpired
	}
	return item, nil
}

func (m *mockCache) Set(ctx context.Context, key string, item *ports.CachedItem) error {
	m.items[key] = item
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.items, key)
	return nil
}

func (m *mockCache) CleanExpired(ctx context.Context) (int, error) { return 0, nil }
func (m *mockCache) Clear(ctx context.Context) error               { return nil }
func (m *mockCache) Stats(ctx context.Context) (int, int64, error) {
	return len(m.items), 0, nil
}

// mockExtractor writes a small file per call so cleanup can be checked
type mockExtractor struct {
	dir     string
	err     error
	calls   int
	created []string
}

func (m *mockExtractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	path := filepath.Join(m.dir, fmt.Sprintf("audio-%d.wav", m.calls))
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		return "", err
	}
	m.created = append(m.created, path)
	return path, nil
}

func (m *mockExtractor) IsAvailable() bool    { return true }
func (m *mockExtractor) BinaryPath() string   { return "ffmpeg" }
func (m *mockExtractor) Instructions() string { return "" }

// mockTranscriber fails on the calls listed in failOn (1-based)
type mockTranscriber struct {
	text   string
	failOn map[int]error
	calls  int
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string, opts ports.TranscribeOpts) (*domain.Transcript, error) {
	m.calls++
	if err, ok := m.failOn[m.calls]; ok {
		return nil, err
	}
	text := m.text
	if text == "" {
		text = fmt.Sprintf("transcript number %d", m.calls)
	}
	return &domain.Transcript{Text: text, Model: opts.Model, TranscribedAt: time.Now()}, nil
}

func (m *mockTranscriber) Name() string { return "mock" }

// mockCompleter records requests and replies with a fixed title
type mockCompleter struct {
	reply    string
	err      error
	requests []ports.CompletionRequest
}

func (m *mockCompleter) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if m.reply != "" {
		return m.reply, nil
	}
	return fmt.Sprintf("  Generated title %d #video  ", len(m.requests)), nil
}

type promptCall struct {
	key  string
	args []any
}

// mockPrompter answers each key from a queue and returns io.EOF once the
// queue for a key is empty
type mockPrompter struct {
	answers map[string][]string
	calls   []promptCall
}

func (m *mockPrompter) Ask(ctx context.Context, key string, args ...any) (string, error) {
	m.calls = append(m.calls, promptCall{key: key, args: args})
	queue := m.answers[key]
	if len(queue) == 0 {
		return "", io.EOF
	}
	m.answers[key] = queue[1:]
	return queue[0], nil
}

func (m *mockPrompter) count(key string) int {
	n := 0
	for _, c := range m.calls {
		if c.key == key {
			n++
		}
	}
	return n
}

// mockNotifier records every event
type mockNotifier struct {
	mu     sync.Mutex
	events []ports.Event
}

func (m *mockNotifier) Notify(e ports.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *mockNotifier) ofKind(kind ports.EventKind) []ports.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.Event
	for _, e := range m.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// mockRenamer fails for paths listed in errs
type mockRenamer struct {
	errs    map[string]error
	renamed map[string]string
}

func (m *mockRenamer) Rename(path, title string) (string, error) {
	if err, ok := m.errs[path]; ok {
		return "", err
	}
	newPath := filepath.Join(filepath.Dir(path), title+filepath.Ext(path))
	if m.renamed == nil {
		m.renamed = make(map[string]string)
	}
	m.renamed[path] = newPath
	return newPath, nil
}

func testTemplates(language string) (string, error) {
	return "Context: {context}\nTranscript: {transcription}", nil
}

// testPipeline wires the application services to mocks
type testPipeline struct {
	extractor   *mockExtractor
	transcriber *mockTranscriber
	completer   *mockCompleter
	prompter    *mockPrompter
	notifier    *mockNotifier
	cache       *mockCache
	models      *ModelSelector
	processor   *VideoProcessor
}

func newTestPipeline(t *testing.T, model string) *testPipeline {
	t.Helper()
	p := &testPipeline{
		extractor:   &mockExtractor{dir: t.TempDir()},
		transcriber: &mockTranscriber{},
		completer:   &mockCompleter{},
		prompter:    &mockPrompter{answers: map[string][]string{}},
		notifier:    &mockNotifier{},
		cache:       newMockCache(),
	}
	transcribe := NewTranscribeService(p.cache, p.extractor, p.transcriber, time.Hour, nil)
	titles := NewTitleGenerator(p.completer, testTemplates, TitleGeneratorOptions{}, p.notifier, nil)
	p.models = NewModelSelector(domain.DefaultCatalog(), model, p.prompter, p.notifier)
	p.processor = NewVideoProcessor(transcribe, titles, p.models, p.notifier, nil, ProcessorOptions{Language: "en"})
	return p
}

// makeVideos creates empty video files and returns their paths
func makeVideos(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("video "+name), 0644); err != nil {
			t.Fatalf("failed to create test video: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}
