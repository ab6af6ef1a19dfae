package media

import (
	"path/filepath"
	"strings"
)

// Extension tables for category classification. Image files go through
// optical text recognition; audio and video files go through transcription.
var (
	imageExtensions = map[string]struct{}{
		".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {},
		".webp": {}, ".tiff": {}, ".heic": {}, ".heif": {},
	}
	audioVideoExtensions = map[string]struct{}{
		".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
		".flv": {}, ".wmv": {}, ".m4v": {},
		".mp3": {}, ".wav": {}, ".m4a": {}, ".flac": {}, ".ogg": {},
	}
)

// ignoreFragments match file names that should never be submitted for
// analysis (OS droppings, editor artifacts).
var ignoreFragments = []string{
	".DS_Store",
	"Thumbs.db",
	".git",
	"__pycache__",
	".pyc",
	".swp",
	"~",
}

// Classify maps a file path to the analysis category its extension calls for.
// The second return is false when the extension is not recognized.
func Classify(path string) (Category, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return CategoryOpticalText, true
	}
	if _, ok := audioVideoExtensions[ext]; ok {
		return CategoryTranscription, true
	}
	return "", false
}

// Ignored reports whether a file name matches the ignore list.
func Ignored(name string) bool {
	for _, fragment := range ignoreFragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}
