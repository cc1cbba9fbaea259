package ports

// Renamer gives video files new names derived from titles
type Renamer interface {
	// Rename moves path to a sanitized title in the same directory, keeping
	// its extension, and returns the new path.
	Rename(path, title string) (string, error)
}

// VideoLister finds video files in a directory
type VideoLister interface {
	// ListVideos returns the paths of supported videos in dir, sorted by name
	ListVideos(dir string) ([]string, error)
}
