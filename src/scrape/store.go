package scrape

import (
	"fmt"
	"path/filepath"

	"github.com/robert-clayton/audiobook/src/fileutil"
)

// Store writes chapter text files under InputDir/<series>/. A chapter file
// is never rewritten once it exists.
type Store struct {
	InputDir string
}

// Path returns where a chapter with the given date and title lives.
func (s Store) Path(series, date, title string) string {
	return filepath.Join(s.InputDir, series, fmt.Sprintf("%s_%s.txt", date, SanitizeTitle(title)))
}

// Save writes the chapter unless a file with the same key is already there.
// The bool reports whether a new file was written.
func (s Store) Save(series, date, title, content string) (string, bool, error) {
	path := s.Path(series, date, title)
	if fileutil.Exists(path) {
		return path, false, nil
	}
	if err := fileutil.WriteAtomic(path, []byte(content)); err != nil {
		return path, false, err
	}
	return path, true, nil
}
