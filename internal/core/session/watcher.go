package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/util"
)

// IsReadingsFile reports whether path has a readings file extension
func IsReadingsFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl":
		return true
	default:
		return false
	}
}

// FileWatcher forwards writes to the watched files and to readings files
// under the watched directories.
// A path may be a directory, watched recursively, or a single file, in
// which case its parent directory is watched and other files are ignored.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	files   map[string]bool
	dirs    []string
	events  chan model.FileEvent
	done    chan struct{}
	once    sync.Once
}

func NewFileWatcher(paths []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		paths:   paths,
		files:   make(map[string]bool),
		events:  make(chan model.FileEvent, 100),
		done:    make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		fw.files[abs] = true
		return fw.watcher.Add(filepath.Dir(abs))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fw.dirs = append(fw.dirs, abs)

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return fw.watcher.Add(p)
		}
		return nil
	})
}

// accepts reports whether an event on name is forwarded. Explicitly watched
// files pass whatever their extension; files under watched directories must
// look like readings files.
func (fw *FileWatcher) accepts(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if fw.files[abs] {
		return true
	}
	if !IsReadingsFile(abs) {
		return false
	}
	for _, dir := range fw.dirs {
		if rel, err := filepath.Rel(dir, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)
	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !fw.accepts(event.Name) {
				continue
			}

			select {
			case fw.events <- model.FileEvent{Path: event.Name, Operation: event.Op.String()}:
			case <-fw.done:
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

// Events is closed once the watcher is closed
func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}
