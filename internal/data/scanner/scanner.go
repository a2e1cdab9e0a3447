package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-actograph/internal/core/session"
	"github.com/penwyp/go-actograph/internal/util"
)

// FileScanner finds readings files under a directory
type FileScanner struct {
	baseDir string
	match   func(path string) bool
}

// NewFileScanner creates a scanner matching .json and .jsonl files
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir: baseDir,
		match:   session.IsReadingsFile,
	}
}

// Scan walks the directory and returns the matching files in lexical order.
// Unreadable entries and hidden directories are skipped.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning directory: %s", s.baseDir))

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}

		if info.IsDir() {
			if path != s.baseDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			dirCount++
			return nil
		}

		totalCount++
		if s.match(path) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d directories, %d files, found %d readings files",
		time.Since(start), dirCount, totalCount, len(files)))

	return files, err
}

// Expand replaces every directory in paths by the readings files it holds.
// Anything else, including paths that do not exist, is kept as given for
// the caller to report when it opens it.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := NewFileScanner(path).Scan()
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			util.LogWarnf("No readings files found in %s", path)
		}
		files = append(files, found...)
	}
	return files, nil
}
