package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
)

// Walker discovers ingestable source files under a root directory
// using doublestar include/exclude patterns.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// SourceFile is one discovered file, classified by document kind.
type SourceFile struct {
	Path    string
	Name    string
	Kind    domain.DocumentKind
	ModTime int64
	Size    int64
}

// Walk returns the matching files under root. Files whose extension
// maps to no known document kind are skipped.
func (w *Walker) Walk(root string) ([]SourceFile, error) {
	var files []SourceFile

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if w.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		kind, ok := KindForPath(path)
		if !ok {
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, SourceFile{
				Path:    path,
				Name:    filepath.Base(path),
				Kind:    kind,
				ModTime: info.ModTime().Unix(),
				Size:    info.Size(),
			})
		}

		return nil
	})

	return files, err
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// KindForPath maps a file extension to a document kind.
func KindForPath(path string) (domain.DocumentKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.KindPDF, true
	case ".txt", ".md", ".text":
		return domain.KindText, true
	case ".mp3", ".wav", ".m4a", ".flac", ".ogg":
		return domain.KindAudio, true
	case ".mp4", ".mkv", ".mov", ".webm", ".avi":
		return domain.KindVideo, true
	}
	return "", false
}

// ReadText reads a text document's full contents.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
