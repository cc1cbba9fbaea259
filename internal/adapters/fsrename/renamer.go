package fsrename

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

var (
	invalidChars        = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
	droppedChars        = strings.NewReplacer(`"`, "", "(", "", ")", "")
)

// Sanitize turns a title into a file name base that is valid on common
// filesystems. It may return "" for titles made only of invalid characters.
func Sanitize(title string) string {
	s := droppedChars.Replace(title)
	s = invalidChars.ReplaceAllString(s, "_")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, ". ")
}

// Files renames and lists videos on an afero filesystem
type Files struct {
	fs afero.Fs
}

// New creates a Files on fs, or on the OS filesystem when fs is nil
func New(fs afero.Fs) *Files {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Files{fs: fs}
}

// Rename moves path to "<sanitized title><ext>" in the same directory. An
// existing target is never overwritten.
func (f *Files) Rename(path, title string) (string, error) {
	base := Sanitize(title)
	if base == "" {
		return "", domain.Wrap(domain.ErrRenameFailed, "title has no usable characters", nil)
	}

	newPath := filepath.Join(filepath.Dir(path), base+filepath.Ext(path))
	if newPath == path {
		return newPath, nil
	}

	if target, err := f.fs.Stat(newPath); err == nil {
		// A case-only change resolves to the source itself on case-insensitive
		// systems. Any other existing file is a conflict.
		if !f.sameFile(path, target) {
			return "", domain.Wrap(domain.ErrRenameConflict, filepath.Base(newPath), nil)
		}
	} else if !os.IsNotExist(err) {
		return "", domain.Wrap(domain.ErrRenameFailed, filepath.Base(newPath), err)
	}

	if err := f.fs.Rename(path, newPath); err != nil {
		return "", domain.Wrap(domain.ErrRenameFailed, fmt.Sprintf("%s -> %s", filepath.Base(path), filepath.Base(newPath)), err)
	}
	return newPath, nil
}

func (f *Files) sameFile(path string, target os.FileInfo) bool {
	source, err := f.fs.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(source, target)
}

// ListVideos returns the supported videos directly inside dir, sorted by
// name. Subdirectories are not searched.
func (f *Files) ListVideos(dir string) ([]string, error) {
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return nil, err
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsVideoFile(entry.Name()) {
			continue
		}
		videos = append(videos, filepath.Join(dir, entry.Name()))
	}
	return videos, nil
}

// Exists reports whether path exists
func (f *Files) Exists(path string) bool {
	ok, err := afero.Exists(f.fs, path)
	return err == nil && ok
}

// IsDir reports whether path is an existing directory
func (f *Files) IsDir(path string) bool {
	ok, err := afero.IsDir(f.fs, path)
	return err == nil && ok
}

var (
	_ ports.Renamer     = (*Files)(nil)
	_ ports.VideoLister = (*Files)(nil)
)
