package adapters

import (
	"path/filepath"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"quartz-skins/internal/ports"
)

// FileWatchSet reports changes to a set of files. Directories are watched
// so that editors replacing a file by rename are still seen. Events are
// delivered on a background goroutine; the pending list is the only state
// it shares with callers.
type FileWatchSet struct {
	watcher *fsnotify.Watcher
	files   map[string]struct{}
	dirs    map[string]struct{}
	done    chan struct{}

	mu      sync.Mutex
	pending []string
}

func NewFileWatchSet() (*FileWatchSet, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create file watcher").
			WithCause(err)
	}
	set := &FileWatchSet{
		watcher: watcher,
		files:   map[string]struct{}{},
		dirs:    map[string]struct{}{},
		done:    make(chan struct{}),
	}
	go set.run()
	return set, nil
}

// NewFileWatchSetFactory adapts NewFileWatchSet to ports.WatchSetFactory.
func NewFileWatchSetFactory() ports.WatchSetFactory {
	return func() (ports.WatchSet, error) {
		return NewFileWatchSet()
	}
}

func (s *FileWatchSet) run() {
	defer close(s.done)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			s.record(event.Name)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (s *FileWatchSet) record(path string) {
	s.mu.Lock()
	s.pending = append(s.pending, filepath.Clean(path))
	s.mu.Unlock()
}

// Watch adds path to the set.
func (s *FileWatchSet) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid watch path " + path).
			WithCause(err)
	}
	s.files[abs] = struct{}{}
	dir := filepath.Dir(abs)
	if _, ok := s.dirs[dir]; ok {
		return nil
	}
	if err := s.watcher.Add(dir); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to watch " + dir).
			WithCause(err)
	}
	s.dirs[dir] = struct{}{}
	return nil
}

// HasChanges reports whether any watched file changed since the last call
// and clears the pending list.
func (s *FileWatchSet) HasChanges() bool {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	changed := false
	for _, path := range pending {
		if _, ok := s.files[path]; ok {
			log.Debug().Str("path", path).Msg("watched file changed")
			changed = true
		}
	}
	return changed
}

// Files returns the number of watched files.
func (s *FileWatchSet) Files() int {
	return len(s.files)
}

func (s *FileWatchSet) Close() error {
	err := s.watcher.Close()
	<-s.done
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close file watcher").
			WithCause(err)
	}
	return nil
}

var _ ports.WatchSet = (*FileWatchSet)(nil)
