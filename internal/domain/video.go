package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// VideoExtensions lists the file extensions treated as videos.
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// IsVideoFile reports whether path has a supported video extension.
// The comparison ignores case.
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// BatchItem is one video queued for title generation.
type BatchItem struct {
	Path    string
	Context string
}

// Name returns the base file name of the item
func (b BatchItem) Name() string {
	return filepath.Base(b.Path)
}

// TitledVideo pairs a video with the title generated for it.
type TitledVideo struct {
	Path  string
	Title string
}

// ItemFailure records why a batch item produced no title.
type ItemFailure struct {
	Path string
	Kind error
	Err  error
}

// BatchResult holds the titles produced by a batch run in input order.
// Items that failed are not part of Items.
type BatchResult struct {
	Items    []TitledVideo
	Failures []ItemFailure
	Total    int
	Duration time.Duration
}

// Succeeded returns the number of items that received a title.
func (r *BatchResult) Succeeded() int {
	return len(r.Items)
}

// Failed returns the number of items that did not receive a title.
func (r *BatchResult) Failed() int {
	return len(r.Failures)
}

// Empty reports whether no item received a title.
func (r *BatchResult) Empty() bool {
	return len(r.Items) == 0
}

// RenameOutcome is the result of renaming one video.
type RenameOutcome struct {
	Path    string
	NewPath string
	Err     error
}

// OK reports whether the rename succeeded.
func (o RenameOutcome) OK() bool {
	return o.Err == nil
}
